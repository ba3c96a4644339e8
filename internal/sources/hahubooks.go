package sources

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

const HahuBooksBaseURL = "https://www.hahubooks.com"

// HahuBooks reads the hahubooks.com shop grid. All fields come from the list
// page.
type HahuBooks struct {
	*Fetcher
	BaseURL string
}

func (h *HahuBooks) Name() string { return "hahubooks" }

func (h *HahuBooks) Scrape(ctx context.Context, limit int) ([]models.Record, error) {
	var records []models.Record

	for page := 1; remaining(limit, len(records)); page++ {
		pageURL := fmt.Sprintf("%s/shop-grid.php?pn=%d", h.BaseURL, page)
		slog.Debug("Scraping page", "source", h.Name(), "page", page)

		doc, err := h.Document(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("Stopping after failed page", "source", h.Name(), "page", page, "err", err)
			break
		}

		items := doc.Find("div.product")
		if items.Length() == 0 {
			slog.Debug("No products found, stopping", "source", h.Name(), "page", page)
			break
		}

		items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if !remaining(limit, len(records)) {
				return false
			}
			if rec, ok := h.record(item); ok {
				records = append(records, rec)
			}
			return true
		})

		if err := h.Pause(ctx); err != nil {
			return records, err
		}
	}

	return records, nil
}

func (h *HahuBooks) record(item *goquery.Selection) (models.Record, bool) {
	content := item.Find("div.product__content").First()
	link := content.Find("h6 a").First()
	if content.Length() == 0 || link.Length() == 0 {
		return models.Record{}, false
	}

	rec := models.Record{
		Title:    cleanText(link.Text()),
		Author:   stripBy(content.Find("small").First().Text()),
		Language: models.DefaultLanguage,
		Source:   "HahuBooks",
		Category: []string{},
	}
	if href, ok := link.Attr("href"); ok {
		rec.URL = absURL(h.BaseURL, href)
	}

	thumb := item.Find("div.product__thumb").First()
	if src, ok := thumb.Find("img").First().Attr("src"); ok && src != "" {
		rec.CoverImage = absURL(h.BaseURL, src)
	}
	if label := cleanText(thumb.Find("div.hot__box span.hot-label").First().Text()); label != "" {
		rec.Category = append(rec.Category, label)
	}

	return rec, true
}
