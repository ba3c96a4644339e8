package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

const (
	GoodreadsBaseURL  = "https://www.goodreads.com"
	goodreadsListPath = "/list/show/89548.Best_Amharic_Books"
	goodreadsMaxPages = 10
)

// Goodreads reads the "Best Amharic Books" list and each book page's
// JSON-LD metadata.
type Goodreads struct {
	*Fetcher
	BaseURL string
}

func (g *Goodreads) Name() string { return "goodreads" }

func (g *Goodreads) Scrape(ctx context.Context, limit int) ([]models.Record, error) {
	var records []models.Record

	for page := 1; page <= goodreadsMaxPages && remaining(limit, len(records)); page++ {
		listURL := fmt.Sprintf("%s%s?page=%d", g.BaseURL, goodreadsListPath, page)
		slog.Debug("Scraping page", "source", g.Name(), "page", page)

		doc, err := g.Document(ctx, listURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("Stopping after failed page", "source", g.Name(), "page", page, "err", err)
			break
		}

		rows := doc.Find(`tr[itemtype="http://schema.org/Book"]`)
		if rows.Length() == 0 {
			break
		}

		var stop error
		rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
			if !remaining(limit, len(records)) {
				return false
			}

			link := row.Find("a.bookTitle").First()
			href, ok := link.Attr("href")
			if !ok || href == "" {
				return true
			}

			rec := models.Record{
				Title:    cleanText(link.Text()),
				Language: models.DefaultLanguage,
				Source:   "Goodreads",
				URL:      absURL(g.BaseURL, href),
				Category: []string{},
			}
			slog.Debug("Fetching details", "source", g.Name(), "title", rec.Title)
			if err := g.details(ctx, &rec); err != nil {
				slog.Warn("Failed to get book details", "source", g.Name(), "url", rec.URL, "err", err)
			}
			if rec.Title != "" {
				records = append(records, rec)
			}

			stop = g.Pause(ctx)
			return stop == nil
		})
		if stop != nil {
			return records, stop
		}
	}

	return records, nil
}

// bookLD is the schema.org Book object embedded in a book page.
type bookLD struct {
	Name          string          `json:"name"`
	Author        json.RawMessage `json:"author"`
	Description   string          `json:"description"`
	ISBN          string          `json:"isbn"`
	Publisher     json.RawMessage `json:"publisher"`
	DatePublished string          `json:"datePublished"`
	Image         string          `json:"image"`
	InLanguage    string          `json:"inLanguage"`
	NumberOfPages int             `json:"numberOfPages"`
}

var (
	rawISBN       = regexp.MustCompile(`"isbn":"(\d+)"`)
	publishedLine = regexp.MustCompile(`(?:First published|Published) (.+)`)
)

func (g *Goodreads) details(ctx context.Context, rec *models.Record) error {
	body, doc, err := g.Raw(ctx, rec.URL)
	if err != nil {
		return err
	}

	var ld bookLD
	if script := doc.Find(`script[type="application/ld+json"]`).First(); script.Length() > 0 {
		if err := json.Unmarshal([]byte(script.Text()), &ld); err != nil {
			slog.Debug("Invalid JSON-LD", "source", g.Name(), "url", rec.URL, "err", err)
		}
	}

	title := ld.Name
	if title == "" {
		title = doc.Find(`h1[data-testid="bookTitle"]`).First().Text()
	}
	if title = cleanText(title); title != "" {
		rec.Title = title
	}

	rec.Author = ldName(ld.Author)
	if rec.Author == "" {
		rec.Author = cleanText(doc.Find(`span[data-testid="name"]`).First().Text())
	}

	desc := ld.Description
	if desc == "" {
		desc = doc.Find(`div[data-testid="description"]`).First().Text()
	}
	rec.Description = cleanText(desc)

	rec.ISBN = ld.ISBN
	if rec.ISBN == "" {
		if m := rawISBN.FindSubmatch(body); m != nil {
			rec.ISBN = string(m[1])
		}
	}

	rec.Publisher = ldName(ld.Publisher)
	rec.PageCount = ld.NumberOfPages

	published := ld.DatePublished
	if published == "" {
		text := doc.Find("div.FeaturedDetails").First().Text()
		if m := publishedLine.FindStringSubmatch(text); m != nil {
			published = strings.TrimSpace(m[1])
		}
	}
	rec.PublishedAt = parseDate(published)

	rec.CoverImage = ld.Image
	if rec.CoverImage == "" {
		if src, ok := doc.Find("img.ResponsiveImage").First().Attr("src"); ok {
			rec.CoverImage = src
		}
	}

	genres := doc.Find("span.BookPageMetadataSection__genreButton")
	if genres.Length() == 0 {
		genres = doc.Find(`div[data-testid="genresList"] a`)
	}
	genres.Each(func(_ int, s *goquery.Selection) {
		if genre := cleanText(s.Text()); genre != "" && genre != "...more" && genre != "Genres" {
			rec.Category = append(rec.Category, genre)
		}
	})

	switch lang := strings.TrimSpace(ld.InLanguage); {
	case lang == "", strings.EqualFold(lang, "Amharic"):
		rec.Language = models.DefaultLanguage
	default:
		rec.Language = lang
	}

	return nil
}

// ldName reads the name of a JSON-LD person or organization, which may be
// an object, a list of objects or a plain string.
func ldName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var one struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &one); err == nil {
		return cleanText(one.Name)
	}
	var many []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return cleanText(many[0].Name)
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return cleanText(plain)
	}
	return ""
}

var (
	dateLayouts = []string{"January 2, 2006", "Jan 2, 2006", "2006", "January 2006"}
	datePhrase  = regexp.MustCompile(`(\w+ \d+, \d{4})`)
)

// parseDate converts the date formats Goodreads uses to YYYY-MM-DD. Dates it
// cannot read are returned unchanged.
func parseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	if m := datePhrase.FindString(s); m != "" {
		if t, err := time.Parse("January 2, 2006", m); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return s
}
