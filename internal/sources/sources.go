// Package sources scrapes Amharic book listings from online catalogs and
// bookstores.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

// Adapter collects raw records from one catalog.
type Adapter interface {
	// Name is the registry key, such as "goodreads".
	Name() string
	// Scrape returns at most limit records; limit <= 0 means no limit.
	// Page failures after the first page end the scrape early with the
	// records collected so far and a nil error.
	Scrape(ctx context.Context, limit int) ([]models.Record, error)
}

// Options configures adapters built from the registry.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	Delay      time.Duration
	// BaseURLs overrides the base URL of an adapter by name.
	BaseURLs map[string]string
}

type constructor func(f *Fetcher, baseURL string) Adapter

type entry struct {
	name        string
	description string
	baseURL     string
	build       constructor
}

// registry lists adapters in their default run order.
var registry = []entry{
	{"mereb", "Mereb bookstore product search (Algolia)", MerebBaseURL, func(f *Fetcher, u string) Adapter { return &Mereb{Fetcher: f, BaseURL: u} }},
	{"ethiobookreview", "Ethio Book Review Amharic catalog", EthioBookReviewBaseURL, func(f *Fetcher, u string) Adapter { return &EthioBookReview{Fetcher: f, BaseURL: u} }},
	{"goodreads", "Goodreads Best Amharic Books list", GoodreadsBaseURL, func(f *Fetcher, u string) Adapter { return &Goodreads{Fetcher: f, BaseURL: u} }},
	{"hahubooks", "Hahu Books shop grid", HahuBooksBaseURL, func(f *Fetcher, u string) Adapter { return &HahuBooks{Fetcher: f, BaseURL: u} }},
	{"gebeyaaddis", "Gebeya Addis book category", GebeyaAddisBaseURL, func(f *Fetcher, u string) Adapter { return &GebeyaAddis{Fetcher: f, BaseURL: u} }},
	{"soderestore", "Sodere Store books collection", SodereStoreBaseURL, func(f *Fetcher, u string) Adapter { return &SodereStore{Fetcher: f, BaseURL: u} }},
}

// Info describes a registered adapter.
type Info struct {
	Name        string
	Description string
	BaseURL     string
}

// Available returns every registered adapter in default run order.
func Available() []Info {
	infos := make([]Info, 0, len(registry))
	for _, e := range registry {
		infos = append(infos, Info{Name: e.name, Description: e.description, BaseURL: e.baseURL})
	}
	return infos
}

// Names returns the default run order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, e := range registry {
		names = append(names, e.name)
	}
	return names
}

// Build returns the named adapters. The result always follows the default
// run order regardless of the order of names. An empty list selects all.
func Build(names []string, opts Options) ([]Adapter, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if !slices.Contains(Names(), n) {
			return nil, fmt.Errorf("unknown source %q (available: %s)", n, strings.Join(Names(), ", "))
		}
		want[n] = true
	}

	f := NewFetcher(opts.HTTPClient)
	if opts.UserAgent != "" {
		f.UserAgent = opts.UserAgent
	}
	f.Delay = opts.Delay

	var adapters []Adapter
	for _, e := range registry {
		if len(want) > 0 && !want[e.name] {
			continue
		}
		baseURL := e.baseURL
		if u, ok := opts.BaseURLs[e.name]; ok && u != "" {
			baseURL = strings.TrimRight(u, "/")
		}
		adapters = append(adapters, e.build(f, baseURL))
	}
	return adapters, nil
}

// remaining reports whether another record fits under limit.
func remaining(limit, have int) bool {
	return limit <= 0 || have < limit
}
