package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/amharic-books/internal/providers"
)

// LLM asks a language model provider for transliterations. Replies are
// checked for the expected script before they are accepted.
type LLM struct {
	Provider    providers.Provider
	Model       string
	Temperature float64
}

// NewLLM returns an LLM-backed converter for the given provider.
func NewLLM(p providers.Provider, model string) *LLM {
	return &LLM{Provider: p, Model: model, Temperature: 0.1}
}

func (l *LLM) Transliterate(ctx context.Context, latin string) (string, error) {
	prompt := fmt.Sprintf(`Transliterate the following name or title from Latin letters into Amharic written in the Ethiopic (Ge'ez) script.
Write it the way an Amharic speaker would spell it. Respond with ONLY the transliteration, no quotes or explanation.

%s`, latin)

	out, err := l.ask(ctx, prompt)
	if err != nil {
		return "", err
	}
	if !HasEthiopic(out) {
		return "", fmt.Errorf("%s reply %q contains no Ethiopic characters", l.Provider.Name(), out)
	}
	return out, nil
}

func (l *LLM) Romanize(ctx context.Context, text string) (string, error) {
	if !HasEthiopic(text) {
		return text, nil
	}

	prompt := fmt.Sprintf(`Romanize the following Amharic text into plain lowercase Latin letters using a simple phonetic spelling.
Respond with ONLY the romanization, no quotes or explanation.

%s`, text)

	out, err := l.ask(ctx, prompt)
	if err != nil {
		return "", err
	}
	if HasEthiopic(out) {
		return "", fmt.Errorf("%s reply %q still contains Ethiopic characters", l.Provider.Name(), out)
	}
	return strings.ToLower(out), nil
}

func (l *LLM) ask(ctx context.Context, prompt string) (string, error) {
	out, err := l.Provider.ExtractText(ctx, providers.Config{
		Model:       l.Model,
		Temperature: l.Temperature,
		Prompt:      prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", l.Provider.Name(), err)
	}

	out = strings.TrimSpace(out)
	out = strings.Trim(out, "\"'`")
	if out == "" {
		return "", fmt.Errorf("%s returned an empty reply", l.Provider.Name())
	}
	return out, nil
}
