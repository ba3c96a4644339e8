package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

const (
	MerebBaseURL = "https://H5Z9SUEF7F-dsn.algolia.net"

	merebAppID       = "H5Z9SUEF7F"
	merebSearchKey   = "c68b889d9f9672238b54929dfb035bc2"
	merebIndex       = "products"
	merebHitsPerPage = 50
)

// Mereb reads the mereb.shop product index through its public Algolia
// search key.
type Mereb struct {
	*Fetcher
	BaseURL string
}

func (m *Mereb) Name() string { return "mereb" }

type algoliaRequest struct {
	Requests []algoliaQuery `json:"requests"`
}

type algoliaQuery struct {
	IndexName string `json:"indexName"`
	Params    string `json:"params"`
}

type algoliaResponse struct {
	Results []struct {
		Hits    []merebHit `json:"hits"`
		NbPages int        `json:"nbPages"`
	} `json:"results"`
}

type merebHit struct {
	Title       string `json:"title"`
	TitleAM     string `json:"titleAM"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	CategoryI   string `json:"categoryI"`
}

func (m *Mereb) Scrape(ctx context.Context, limit int) ([]models.Record, error) {
	var records []models.Record
	endpoint := m.BaseURL + "/1/indexes/*/queries"
	headers := map[string]string{
		"x-algolia-application-id": merebAppID,
		"x-algolia-api-key":        merebSearchKey,
		"Referer":                  "https://www.mereb.shop/",
	}

	// algolia pages are zero based
	for page := 0; remaining(limit, len(records)); page++ {
		slog.Debug("Fetching page", "source", m.Name(), "page", page+1)

		params := url.Values{}
		params.Set("hitsPerPage", strconv.Itoa(merebHitsPerPage))
		params.Set("page", strconv.Itoa(page))
		params.Set("facetFilters", `[["categoryI:Books"]]`)

		var resp algoliaResponse
		req := algoliaRequest{Requests: []algoliaQuery{{IndexName: merebIndex, Params: params.Encode()}}}
		if err := m.PostJSON(ctx, endpoint, headers, req, &resp); err != nil {
			if page == 0 {
				return nil, fmt.Errorf("failed to query Algolia: %w", err)
			}
			slog.Warn("Stopping after failed page", "source", m.Name(), "page", page+1, "err", err)
			break
		}
		if len(resp.Results) == 0 || len(resp.Results[0].Hits) == 0 {
			slog.Debug("No more hits", "source", m.Name(), "page", page+1)
			break
		}

		result := resp.Results[0]
		for _, hit := range result.Hits {
			if !remaining(limit, len(records)) {
				break
			}
			if hit.CategoryI != "Books" {
				continue
			}
			records = append(records, hit.record())
		}

		if page+1 >= result.NbPages {
			break
		}
		if err := m.Pause(ctx); err != nil {
			return records, err
		}
	}

	return records, nil
}

func (h merebHit) record() models.Record {
	title := h.TitleAM
	if title == "" {
		title = h.Title
	}
	return models.Record{
		Title:       cleanText(title),
		TitleEn:     cleanText(h.Title),
		Author:      cleanText(h.Author),
		Description: cleanText(h.Description),
		Language:    models.DefaultLanguage,
		CoverImage:  h.Image,
		Source:      "Mereb",
		URL:         h.URL,
	}
}
