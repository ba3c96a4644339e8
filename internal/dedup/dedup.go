// Package dedup admits at most one record per normalized title within a run.
package dedup

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
	"github.com/lehigh-university-libraries/amharic-books/internal/script"
)

// Policy configures which records are admitted.
type Policy struct {
	// ExcludeAuthors are regular expressions matched case-insensitively
	// against the author and romanized author.
	ExcludeAuthors []string
	// MatchRomanized also treats the romanized title as a key, so a native
	// title and its Latin rendering count as the same book.
	MatchRomanized bool
}

// DefaultPolicy has no exclusions and matches romanized titles.
func DefaultPolicy() Policy {
	return Policy{MatchRomanized: true}
}

// Deduplicator tracks the title keys seen in one run. It is not safe for
// concurrent use; the driver calls it from a single goroutine.
type Deduplicator struct {
	exclude        []*regexp.Regexp
	matchRomanized bool
	seen           map[string]struct{}
	admitted       int
}

// New compiles the policy. An invalid pattern is an error.
func New(p Policy) (*Deduplicator, error) {
	d := &Deduplicator{
		matchRomanized: p.MatchRomanized,
		seen:           make(map[string]struct{}),
	}
	for _, pattern := range p.ExcludeAuthors {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid author exclusion %q: %w", pattern, err)
		}
		d.exclude = append(d.exclude, re)
	}
	return d, nil
}

// Key returns the comparison key for a title: NFC normalized, trimmed,
// case folded, with whitespace runs collapsed to one space.
func Key(title string) string {
	s := norm.NFC.String(title)
	s = cases.Fold().String(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// Admit reports whether rec is the first record with its title. Records
// with an empty title or an excluded author are rejected.
func (d *Deduplicator) Admit(rec *models.Record) bool {
	key := Key(rec.Title)
	if key == "" {
		return false
	}
	if d.excluded(rec) {
		slog.Info("Skipping book by excluded author", "author", rec.Author, "title", rec.Title, "source", rec.Source)
		return false
	}

	keys := []string{key}
	if d.matchRomanized {
		if alias := Key(rec.TitleRomanized); alias != "" && alias != key {
			keys = append(keys, alias)
		}
	}

	// native titles are compared on their own key only; romanization
	// merges distinct letters such as ተ and ጠ
	check := keys
	if script.HasEthiopic(rec.Title) {
		check = keys[:1]
	}
	for _, k := range check {
		if _, ok := d.seen[k]; ok {
			slog.Debug("Duplicate title", "title", rec.Title, "source", rec.Source)
			return false
		}
	}
	for _, k := range keys {
		d.seen[k] = struct{}{}
	}
	d.admitted++
	return true
}

func (d *Deduplicator) excluded(rec *models.Record) bool {
	for _, re := range d.exclude {
		if rec.Author != "" && re.MatchString(rec.Author) {
			return true
		}
		if rec.AuthorRomanized != "" && re.MatchString(rec.AuthorRomanized) {
			return true
		}
	}
	return false
}

// Seen returns the number of admitted records.
func (d *Deduplicator) Seen() int {
	return d.admitted
}

// Reset clears the seen set for a new run.
func (d *Deduplicator) Reset() {
	d.seen = make(map[string]struct{})
	d.admitted = 0
}
