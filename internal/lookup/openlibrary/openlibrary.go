// Package openlibrary searches the Open Library catalog as an alternative
// metadata service.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/amharic-books/internal/lookup"
)

const (
	DefaultBaseURL  = "https://openlibrary.org"
	DefaultCoverURL = "https://covers.openlibrary.org"
	serviceName     = "open library"
)

// Client retrieves book metadata from the Open Library search API.
type Client struct {
	BaseURL    string
	CoverURL   string
	HTTPClient *http.Client
}

// New creates a new Open Library client.
func New() *Client {
	return &Client{
		BaseURL:  DefaultBaseURL,
		CoverURL: DefaultCoverURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// searchResponse represents the Open Library search.json response.
type searchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		ISBN             []string `json:"isbn"`
		Publisher        []string `json:"publisher"`
		FirstPublishYear int      `json:"first_publish_year"`
		PagesMedian      int      `json:"number_of_pages_median"`
		Subject          []string `json:"subject"`
		CoverID          int      `json:"cover_i"`
		FirstSentence    []string `json:"first_sentence"`
	} `json:"docs"`
}

const searchFields = "title,author_name,isbn,publisher,first_publish_year,number_of_pages_median,subject,cover_i,first_sentence"

func (c *Client) Search(ctx context.Context, q lookup.Query) (*lookup.Volume, error) {
	params := url.Values{}
	switch q.Field {
	case lookup.FieldISBN:
		params.Set("isbn", lookup.CleanISBN(q.Text))
	case lookup.FieldTitle:
		params.Set("title", q.Text)
	default:
		params.Set("q", q.Text)
	}
	params.Set("limit", "1")
	params.Set("fields", searchFields)

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/search.json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Open Library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &lookup.StatusError{Service: serviceName, StatusCode: resp.StatusCode}
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Open Library response: %w", err)
	}

	if len(result.Docs) == 0 {
		slog.Debug("No Open Library match", "query", q.String())
		return nil, nil
	}

	doc := result.Docs[0]
	v := &lookup.Volume{
		Title:      doc.Title,
		Authors:    doc.AuthorName,
		PageCount:  doc.PagesMedian,
		Categories: firstN(doc.Subject, 5),
	}
	if len(doc.Publisher) > 0 {
		v.Publisher = doc.Publisher[0]
	}
	if doc.FirstPublishYear > 0 {
		v.PublishedDate = strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.FirstSentence) > 0 {
		v.Description = doc.FirstSentence[0]
	}
	v.IndustryIdentifiers = identifiers(doc.ISBN)
	if doc.CoverID > 0 {
		base := strings.TrimRight(c.CoverURL, "/")
		v.ImageLinks = lookup.ImageLinks{
			SmallThumbnail: fmt.Sprintf("%s/b/id/%d-S.jpg", base, doc.CoverID),
			Thumbnail:      fmt.Sprintf("%s/b/id/%d-M.jpg", base, doc.CoverID),
		}
	}

	return v, nil
}

// identifiers keeps the first ISBN of each length, typed the way Google
// Books types them.
func identifiers(isbns []string) []lookup.Identifier {
	var ids []lookup.Identifier
	var have10, have13 bool
	for _, raw := range isbns {
		isbn := lookup.CleanISBN(raw)
		switch {
		case len(isbn) == 13 && !have13:
			ids = append(ids, lookup.Identifier{Type: "ISBN_13", Identifier: isbn})
			have13 = true
		case len(isbn) == 10 && !have10:
			ids = append(ids, lookup.Identifier{Type: "ISBN_10", Identifier: isbn})
			have10 = true
		}
	}
	return ids
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
