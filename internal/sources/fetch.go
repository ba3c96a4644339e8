package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// Fetcher retrieves pages for the adapters and paces requests.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	Delay      time.Duration
}

// NewFetcher creates a fetcher. A nil client gets a 30 second timeout.
func NewFetcher(c *http.Client) *Fetcher {
	if c == nil {
		c = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		HTTPClient: c,
		UserAgent:  defaultUserAgent,
		Delay:      time.Second,
	}
}

// Document fetches u and parses it as HTML.
func (f *Fetcher) Document(ctx context.Context, u string) (*goquery.Document, error) {
	_, doc, err := f.Raw(ctx, u)
	return doc, err
}

// Raw fetches u and returns the body together with the parsed document.
func (f *Fetcher) Raw(ctx context.Context, u string) ([]byte, *goquery.Document, error) {
	body, err := f.get(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", u, err)
	}
	return body, doc, nil
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	return f.do(req)
}

// PostJSON sends payload as JSON and decodes the response into out.
func (f *Fetcher) PostJSON(ctx context.Context, u string, headers map[string]string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", f.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, err := f.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", u, err)
	}
	return nil
}

func (f *Fetcher) do(req *http.Request) ([]byte, error) {
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.URL, err)
	}
	return body, nil
}

// Pause waits the configured delay between requests.
func (f *Fetcher) Pause(ctx context.Context) error {
	if f.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(f.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StatusError is a non-200 response from a catalog.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

var spaces = regexp.MustCompile(`\s+`)

// cleanText collapses whitespace runs and trims.
func cleanText(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// absURL resolves ref against base. Unparseable input is returned as is.
func absURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// stripBy removes a leading "በ" or "by" from an author credit.
func stripBy(s string) string {
	s = cleanText(s)
	for _, prefix := range []string{"በ ", "by ", "By "} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	return s
}
