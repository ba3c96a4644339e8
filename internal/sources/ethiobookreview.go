package sources

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

const EthioBookReviewBaseURL = "https://www.ethiobookreview.com"

// EthioBookReview walks the Amharic catalog pages and reads each book's
// detail page for its title, description and category.
type EthioBookReview struct {
	*Fetcher
	BaseURL string
}

func (e *EthioBookReview) Name() string { return "ethiobookreview" }

var (
	ebrTitle    = regexp.MustCompile(`(?i)^(.*?)(?: Amharic book by| \| Ethio Book Review)`)
	ebrCategory = regexp.MustCompile(`Category:\s*(.+)`)
)

// about 24 books per catalog page
const ebrPageSize = 24

func (e *EthioBookReview) Scrape(ctx context.Context, limit int) ([]models.Record, error) {
	var records []models.Record

	maxPages := 0
	if limit > 0 {
		maxPages = limit/ebrPageSize + 2
	}

	for page := 1; (maxPages == 0 || page <= maxPages) && remaining(limit, len(records)); page++ {
		pageURL := fmt.Sprintf("%s/amharic/pages/%d", e.BaseURL, page)
		slog.Debug("Scraping page", "source", e.Name(), "page", page)

		doc, err := e.Document(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("Stopping after failed page", "source", e.Name(), "page", page, "err", err)
			break
		}

		items := doc.Find("div.product")
		if items.Length() == 0 {
			break
		}

		var stop error
		items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if !remaining(limit, len(records)) {
				return false
			}

			rec := models.Record{
				Author:   cleanText(item.Find("h5").First().Text()),
				Language: models.DefaultLanguage,
				Source:   "EthioBookReview",
				URL:      pageURL,
				Category: []string{},
			}
			if src, ok := item.Find("img").First().Attr("src"); ok && src != "" {
				rec.CoverImage = absURL(e.BaseURL, src)
			}
			if href, ok := item.Find("a").First().Attr("href"); ok && href != "" {
				rec.URL = absURL(e.BaseURL, href)
				if err := e.details(ctx, &rec); err != nil {
					slog.Warn("Failed to get book details", "source", e.Name(), "url", rec.URL, "err", err)
				}
				if stop = e.Pause(ctx); stop != nil {
					return false
				}
			}

			records = append(records, rec)
			return true
		})
		if stop != nil {
			return records, stop
		}
	}

	return records, nil
}

func (e *EthioBookReview) details(ctx context.Context, rec *models.Record) error {
	doc, err := e.Document(ctx, rec.URL)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if m := ebrTitle.FindStringSubmatch(title); m != nil {
		title = strings.TrimSpace(m[1])
	}
	rec.Title = cleanText(title)

	var longest string
	doc.Find("div.product-details p").Each(func(_ int, p *goquery.Selection) {
		if text := p.Text(); utf8.RuneCountInString(text) > utf8.RuneCountInString(longest) {
			longest = text
		}
	})
	if utf8.RuneCountInString(longest) > 50 {
		rec.Description = cleanText(longest)
	} else if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		rec.Description = cleanText(desc)
	}

	if m := ebrCategory.FindStringSubmatch(doc.Text()); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			rec.Category = append(rec.Category, name)
		}
	}

	return nil
}
