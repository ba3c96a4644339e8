// Package lookup defines the metadata search contract shared by the
// enrichment cascade and the book metadata services it queries.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRateLimited is returned when the service kept answering 429 after every
// allowed attempt.
var ErrRateLimited = errors.New("rate limited")

// Field selects how the query text is matched.
type Field int

const (
	// FieldAny searches keywords across all fields.
	FieldAny Field = iota
	// FieldISBN looks up an exact ISBN.
	FieldISBN
	// FieldTitle matches the title only.
	FieldTitle
)

func (f Field) String() string {
	switch f {
	case FieldISBN:
		return "isbn"
	case FieldTitle:
		return "intitle"
	default:
		return "any"
	}
}

// Query is one search against a metadata service.
type Query struct {
	Field Field
	Text  string
}

// ISBN returns an exact ISBN query.
func ISBN(isbn string) Query { return Query{Field: FieldISBN, Text: isbn} }

// Title returns a title-only query.
func Title(title string) Query { return Query{Field: FieldTitle, Text: title} }

// Keywords returns a free-text query.
func Keywords(words ...string) Query {
	return Query{Field: FieldAny, Text: strings.Join(words, " ")}
}

// String renders the query in Google Books syntax.
func (q Query) String() string {
	switch q.Field {
	case FieldISBN, FieldTitle:
		return q.Field.String() + ":" + q.Text
	default:
		return q.Text
	}
}

// Identifier is one industry identifier on a volume, such as ISBN_13.
type Identifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ImageLinks holds cover image URLs by resolution.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}

// Volume is the metadata payload of the best match.
type Volume struct {
	Title               string       `json:"title"`
	Authors             []string     `json:"authors,omitempty"`
	IndustryIdentifiers []Identifier `json:"industryIdentifiers,omitempty"`
	PageCount           int          `json:"pageCount,omitempty"`
	Publisher           string       `json:"publisher,omitempty"`
	PublishedDate       string       `json:"publishedDate,omitempty"`
	Description         string       `json:"description,omitempty"`
	Categories          []string     `json:"categories,omitempty"`
	ImageLinks          ImageLinks   `json:"imageLinks"`
}

// ISBN returns the 13-digit identifier if the volume has one, otherwise the
// 10-digit one, otherwise "".
func (v *Volume) ISBN() string {
	var isbn10 string
	for _, id := range v.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		}
	}
	return isbn10
}

// Searcher finds the single best match for a query. A nil volume with a nil
// error means the service had no results.
type Searcher interface {
	Search(ctx context.Context, q Query) (*Volume, error)
}

// StatusError reports a non-success HTTP status from a metadata service.
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

// CleanISBN removes hyphens and spaces from an ISBN.
func CleanISBN(isbn string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
}
