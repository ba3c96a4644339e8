package enrich

import (
	"context"
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/amharic-books/internal/lookup"
	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

// fakeSearcher answers queries from a map keyed by the rendered query.
type fakeSearcher struct {
	answers map[string]*lookup.Volume
	errs    map[string]error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, q lookup.Query) (*lookup.Volume, error) {
	f.queries = append(f.queries, q.String())
	if err, ok := f.errs[q.String()]; ok {
		return nil, err
	}
	return f.answers[q.String()], nil
}

var fullVolume = &lookup.Volume{
	Title: "Fikir Eske Mekabir",
	IndustryIdentifiers: []lookup.Identifier{
		{Type: "ISBN_10", Identifier: "1234567890"},
		{Type: "ISBN_13", Identifier: "9781234567897"},
	},
	PageCount:     412,
	Publisher:     "Kuraz",
	PublishedDate: "1968",
	Description:   "A novel.",
	Categories:    []string{"Fiction"},
	ImageLinks:    lookup.ImageLinks{SmallThumbnail: "small", Thumbnail: "thumb"},
}

func TestEnrichSkipsSatisfiedRecords(t *testing.T) {
	s := &fakeSearcher{}
	rec := &models.Record{Title: "x", ISBN: "1", PageCount: 10, Description: "d"}

	got := New(s).Enrich(context.Background(), rec)
	if got != rec {
		t.Error("Expected the same record back")
	}
	if len(s.queries) != 0 {
		t.Errorf("Expected no lookups, got %v", s.queries)
	}
}

func TestEnrichNeverOverwrites(t *testing.T) {
	s := &fakeSearcher{answers: map[string]*lookup.Volume{"intitle:ፍቅር እስከ መቃብር": fullVolume}}
	rec := &models.Record{Title: "ፍቅር እስከ መቃብር", Publisher: "X", Category: []string{}}

	New(s).Enrich(context.Background(), rec)

	expected := &models.Record{
		Title:       "ፍቅር እስከ መቃብር",
		Publisher:   "X",
		ISBN:        "9781234567897",
		PageCount:   412,
		PublishedAt: "1968",
		Description: "A novel.",
		Category:    []string{"Fiction"},
		CoverImage:  "thumb",
	}
	if !reflect.DeepEqual(rec, expected) {
		t.Errorf("Expected %+v, got %+v", expected, rec)
	}
}

func TestEnrichISBNShortCircuits(t *testing.T) {
	s := &fakeSearcher{answers: map[string]*lookup.Volume{"isbn:9781234567897": fullVolume}}
	rec := &models.Record{
		Title:           "ፍቅር",
		TitleEn:         "Love",
		TitleRomanized:  "fiqir",
		AuthorRomanized: "hadis",
		ISBN:            "9781234567897",
	}

	New(s).Enrich(context.Background(), rec)

	if !reflect.DeepEqual(s.queries, []string{"isbn:9781234567897"}) {
		t.Errorf("Expected a single isbn query, got %v", s.queries)
	}
	if rec.PageCount != 412 {
		t.Errorf("Expected page count to be filled, got %d", rec.PageCount)
	}
}

func TestEnrichCascadeOrder(t *testing.T) {
	s := &fakeSearcher{}
	rec := &models.Record{
		Title:           "ፍቅር (ሁለተኛ እትም)",
		TitleEn:         "Love",
		TitleRomanized:  "fiqir",
		Author:          "ሀዲስ",
		AuthorRomanized: "hadis",
		ISBN:            "123",
		Description:     "kept",
	}
	before := *rec

	New(s).Enrich(context.Background(), rec)

	expected := []string{
		"isbn:123",
		"intitle:Love",
		"fiqir hadis",
		"intitle:ፍቅር",
		"ፍቅር ሀዲስ",
	}
	if !reflect.DeepEqual(s.queries, expected) {
		t.Errorf("Expected queries %v, got %v", expected, s.queries)
	}
	if !reflect.DeepEqual(*rec, before) {
		t.Errorf("Expected record unchanged without a match, got %+v", rec)
	}
}

func TestEnrichSkipsUnavailableStrategies(t *testing.T) {
	s := &fakeSearcher{}
	rec := &models.Record{Title: "Oromay", TitleRomanized: "Oromay"}

	New(s).Enrich(context.Background(), rec)

	expected := []string{"intitle:Oromay", "Oromay"}
	if !reflect.DeepEqual(s.queries, expected) {
		t.Errorf("Expected queries %v, got %v", expected, s.queries)
	}
}

func TestEnrichContinuesAfterLookupErrors(t *testing.T) {
	s := &fakeSearcher{
		errs:    map[string]error{"intitle:Love": lookup.ErrRateLimited},
		answers: map[string]*lookup.Volume{"fiqir hadis": {Publisher: "Mega"}},
	}
	rec := &models.Record{Title: "ፍቅር", TitleEn: "Love", TitleRomanized: "fiqir", AuthorRomanized: "hadis"}

	New(s).Enrich(context.Background(), rec)

	if rec.Publisher != "Mega" {
		t.Errorf("Expected publisher from the next strategy, got %q", rec.Publisher)
	}
}

func TestEnrichStopsWhenCancelled(t *testing.T) {
	s := &fakeSearcher{errs: map[string]error{"intitle:Love": context.Canceled}}
	rec := &models.Record{Title: "ፍቅር", TitleEn: "Love", TitleRomanized: "fiqir", AuthorRomanized: "hadis"}

	New(s).Enrich(context.Background(), rec)

	if len(s.queries) != 1 {
		t.Errorf("Expected cascade to stop after cancellation, got %v", s.queries)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"ፍቅር እስከ መቃብር (Fikir Eske Mekabir)", "ፍቅር እስከ መቃብር"},
		{"Oromay", "Oromay"},
		{"(Untitled)", "(Untitled)"},
		{"  Dertogada  ", "Dertogada"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := CleanTitle(tt.title); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestApplyFallsBackToISBN10(t *testing.T) {
	rec := &models.Record{}
	Apply(rec, &lookup.Volume{IndustryIdentifiers: []lookup.Identifier{{Type: "ISBN_10", Identifier: "1234567890"}}})
	if rec.ISBN != "1234567890" {
		t.Errorf("Expected ISBN_10, got %q", rec.ISBN)
	}
	if rec.Category != nil {
		t.Errorf("Expected no categories, got %v", rec.Category)
	}
}

