package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/amharic-books/internal/providers"
)

const (
	DefaultURL     = "http://localhost:11434"
	DefaultModel   = "mistral-small3.2:24b"
	maxReplyTokens = 64
)

// Ollama is a provider for a local Ollama server
type Ollama struct {
	URL        string
	HTTPClient *http.Client
}

// New returns a new Ollama provider; an empty url means DefaultURL
func New(url string) *Ollama {
	if url == "" {
		url = DefaultURL
	}
	return &Ollama{
		URL:        strings.TrimRight(url, "/"),
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *Ollama) Name() string { return "ollama" }

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// ExtractText runs a non-streaming generate call and returns the trimmed reply.
func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	req := generateRequest{
		Model:  config.Model,
		Prompt: config.Prompt,
		Options: generateOptions{
			Temperature: config.Temperature,
			NumPredict:  maxReplyTokens,
		},
	}
	if req.Model == "" {
		req.Model = DefaultModel
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := providers.PostJSON(ctx, o.HTTPClient, o.Name(), o.URL+"/api/generate", nil, req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}
