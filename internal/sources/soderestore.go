package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

const (
	SodereStoreBaseURL   = "https://soderestore.com"
	sodereCollectionPath = "/Books-%E1%88%98%E1%8D%83%E1%88%85%E1%8D%8D%E1%89%B5-c35241255"
	sodereStorePageSize  = 60
)

// SodereStore reads the books collection of soderestore.com, which lists
// titles as "Title በ Author" or "Title by Author".
type SodereStore struct {
	*Fetcher
	BaseURL string
}

func (s *SodereStore) Name() string { return "soderestore" }

func (s *SodereStore) Scrape(ctx context.Context, limit int) ([]models.Record, error) {
	var records []models.Record

	for offset := 0; remaining(limit, len(records)); offset += sodereStorePageSize {
		pageURL := s.BaseURL + sodereCollectionPath
		if offset > 0 {
			pageURL = fmt.Sprintf("%s?offset=%d", pageURL, offset)
		}
		slog.Debug("Scraping offset", "source", s.Name(), "offset", offset)

		doc, err := s.Document(ctx, pageURL)
		if err != nil {
			if offset == 0 {
				return nil, err
			}
			slog.Warn("Stopping after failed page", "source", s.Name(), "offset", offset, "err", err)
			break
		}

		items := doc.Find("div.grid-product")
		if items.Length() == 0 {
			break
		}

		items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if !remaining(limit, len(records)) {
				return false
			}
			if rec, ok := s.record(item); ok {
				records = append(records, rec)
			}
			return true
		})

		if items.Length() < sodereStorePageSize {
			break
		}
		if err := s.Pause(ctx); err != nil {
			return records, err
		}
	}

	return records, nil
}

func (s *SodereStore) record(item *goquery.Selection) (models.Record, bool) {
	link := item.Find("a.grid-product__title").First()
	if link.Length() == 0 {
		return models.Record{}, false
	}

	raw, _ := link.Attr("title")
	title, author := splitCredit(raw)

	rec := models.Record{
		Title:    title,
		Author:   author,
		Language: models.DefaultLanguage,
		Source:   "SodereStore",
		Category: []string{"Books"},
	}
	if href, ok := link.Attr("href"); ok {
		rec.URL = absURL(s.BaseURL, href)
	}
	if src, ok := item.Find("img.grid-product__picture").First().Attr("src"); ok && src != "" {
		rec.CoverImage = absURL(s.BaseURL, src)
	}
	return rec, true
}

// splitCredit separates "Title በ Author" or "Title by Author".
func splitCredit(raw string) (title, author string) {
	for _, sep := range []string{" በ ", " by "} {
		if parts := strings.Split(raw, sep); len(parts) > 1 {
			return cleanText(parts[0]), cleanText(parts[len(parts)-1])
		}
	}
	return cleanText(raw), ""
}
