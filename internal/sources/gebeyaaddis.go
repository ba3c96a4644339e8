package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

const GebeyaAddisBaseURL = "https://www.gebeyaaddis.com"

// GebeyaAddis reads the WooCommerce book category of gebeyaaddis.com. The
// author is only published on the product page.
type GebeyaAddis struct {
	*Fetcher
	BaseURL string
}

func (g *GebeyaAddis) Name() string { return "gebeyaaddis" }

func (g *GebeyaAddis) Scrape(ctx context.Context, limit int) ([]models.Record, error) {
	var records []models.Record

	for page := 1; remaining(limit, len(records)); page++ {
		pageURL := fmt.Sprintf("%s/product-category/books/page/%d/", g.BaseURL, page)
		slog.Debug("Scraping page", "source", g.Name(), "page", page)

		doc, err := g.Document(ctx, pageURL)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.StatusCode == http.StatusNotFound && page > 1 {
				slog.Debug("Reached the last page", "source", g.Name(), "page", page)
				break
			}
			if page == 1 {
				return nil, err
			}
			slog.Warn("Stopping after failed page", "source", g.Name(), "page", page, "err", err)
			break
		}

		items := doc.Find("li.product")
		if items.Length() == 0 {
			break
		}

		var stop error
		items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if !remaining(limit, len(records)) {
				return false
			}

			title := cleanText(item.Find("h2.woocommerce-loop-product__title").First().Text())
			href, ok := item.Find("a.woocommerce-LoopProduct-link").First().Attr("href")
			if title == "" || !ok {
				return true
			}

			rec := models.Record{
				Title:    title,
				Language: models.DefaultLanguage,
				Source:   "GebeyaAddis",
				URL:      absURL(g.BaseURL, href),
				Category: []string{},
			}
			if src, ok := item.Find("img").First().Attr("src"); ok {
				rec.CoverImage = src
			}

			if rec.URL != "" {
				author, err := g.author(ctx, rec.URL)
				if err != nil {
					slog.Warn("Failed to fetch product page", "source", g.Name(), "url", rec.URL, "err", err)
				}
				rec.Author = author
				if stop = g.Pause(ctx); stop != nil {
					return false
				}
			}

			records = append(records, rec)
			return true
		})
		if stop != nil {
			return records, stop
		}

		if err := g.Pause(ctx); err != nil {
			return records, err
		}
	}

	return records, nil
}

func (g *GebeyaAddis) author(ctx context.Context, productURL string) (string, error) {
	doc, err := g.Document(ctx, productURL)
	if err != nil {
		return "", err
	}
	content, ok := doc.Find(`meta[property="og:description"]`).Attr("content")
	if !ok {
		return "", nil
	}
	return stripBy(content), nil
}
