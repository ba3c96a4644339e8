package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/amharic-books/internal/providers"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	// replies are a single name or title
	maxReplyTokens = 64
)

// OpenAI is a provider for the OpenAI chat completions API
type OpenAI struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a new OpenAI provider
func New(apiKey string) *OpenAI {
	return &OpenAI{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (o *OpenAI) Name() string { return "openai" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// ExtractText sends the prompt as one user message and returns the trimmed reply.
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if o.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY environment variable not set")
	}

	req := chatRequest{
		Model:       config.Model,
		Messages:    []message{{Role: "user", Content: config.Prompt}},
		Temperature: config.Temperature,
		MaxTokens:   maxReplyTokens,
	}
	if req.Model == "" {
		req.Model = DefaultModel
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.APIKey)

	var resp chatResponse
	if err := providers.PostJSON(ctx, o.HTTPClient, o.Name(), o.BaseURL+"/chat/completions", header, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
