package script

import (
	"context"
	"errors"
	"testing"

	"github.com/lehigh-university-libraries/amharic-books/internal/providers"
)

type fakeProvider struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ExtractText(_ context.Context, config providers.Config) (string, error) {
	f.prompts = append(f.prompts, config.Prompt)
	return f.reply, f.err
}

func TestLLMTransliterate(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		err      error
		expected string
		wantErr  bool
	}{
		{name: "accepts ethiopic reply", reply: " \"ሐዲስ ዓለማየሁ\"\n", expected: "ሐዲስ ዓለማየሁ"},
		{name: "rejects latin reply", reply: "Haddis Alemayehu", wantErr: true},
		{name: "rejects empty reply", reply: "  ", wantErr: true},
		{name: "propagates provider error", err: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{reply: tt.reply, err: tt.err}
			got, err := NewLLM(p, "").Transliterate(context.Background(), "Haddis Alemayehu")
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transliterate failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLLMRomanize(t *testing.T) {
	p := &fakeProvider{reply: "Fiqir Iske Meqabir"}
	got, err := NewLLM(p, "").Romanize(context.Background(), "ፍቅር እስከ መቃብር")
	if err != nil {
		t.Fatalf("Romanize failed: %v", err)
	}
	if got != "fiqir iske meqabir" {
		t.Errorf("Expected lowercase romanization, got %q", got)
	}

	// Latin input needs no provider call
	p = &fakeProvider{}
	got, err = NewLLM(p, "").Romanize(context.Background(), "Oromay")
	if err != nil || got != "Oromay" {
		t.Errorf("Expected passthrough, got %q, %v", got, err)
	}
	if len(p.prompts) != 0 {
		t.Errorf("Expected no provider calls, got %d", len(p.prompts))
	}
}

func TestLLMRomanizeRejectsEthiopicReply(t *testing.T) {
	p := &fakeProvider{reply: "ፍቅር"}
	if _, err := NewLLM(p, "").Romanize(context.Background(), "ፍቅር"); err == nil {
		t.Error("Expected error for untranslated reply, got nil")
	}
}
