// Package googlebooks searches the Google Books volumes API.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	books "google.golang.org/api/books/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/lehigh-university-libraries/amharic-books/internal/lookup"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/"
	serviceName    = "google books"
)

// Client issues one volumes.list request per search, asking for the single
// best printed-book match.
type Client struct {
	service *books.Service
	apiKey  string
}

// Option configures a Client.
type Option func(*settings)

type settings struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at another endpoint, such as a test server.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithHTTPClient replaces the default client, which has a 10 second timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// New creates a client. The API key is optional; without it requests are
// subject to the anonymous quota.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	s := settings{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&s)
	}

	svc, err := books.NewService(ctx,
		option.WithHTTPClient(s.httpClient),
		option.WithEndpoint(s.baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Books service: %w", err)
	}

	return &Client{service: svc, apiKey: apiKey}, nil
}

func (c *Client) Search(ctx context.Context, q lookup.Query) (*lookup.Volume, error) {
	call := c.service.Volumes.List(q.String()).
		MaxResults(1).
		PrintType("books").
		Context(ctx)

	var callOpts []googleapi.CallOption
	if c.apiKey != "" {
		callOpts = append(callOpts, googleapi.QueryParameter("key", c.apiKey))
	}

	resp, err := call.Do(callOpts...)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &lookup.StatusError{Service: serviceName, StatusCode: gerr.Code}
		}
		return nil, fmt.Errorf("failed to query Google Books: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0].VolumeInfo == nil {
		return nil, nil
	}

	return toVolume(resp.Items[0].VolumeInfo), nil
}

func toVolume(info *books.VolumeVolumeInfo) *lookup.Volume {
	v := &lookup.Volume{
		Title:         info.Title,
		Authors:       info.Authors,
		PageCount:     int(info.PageCount),
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		Categories:    info.Categories,
	}
	for _, id := range info.IndustryIdentifiers {
		if id == nil {
			continue
		}
		v.IndustryIdentifiers = append(v.IndustryIdentifiers, lookup.Identifier{
			Type:       id.Type,
			Identifier: id.Identifier,
		})
	}
	if info.ImageLinks != nil {
		v.ImageLinks = lookup.ImageLinks{
			SmallThumbnail: info.ImageLinks.SmallThumbnail,
			Thumbnail:      info.ImageLinks.Thumbnail,
		}
	}
	return v
}
