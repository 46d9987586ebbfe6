// Package scrape walks the paginated listing tables of every configured
// portal and reduces them to a deduplicated scholarship set.
package scrape

import (
	"bytes"
	"context"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/extract"
	"scholar-fetch/internal/scholar/model"
)

const listingRowSelector = "table.striped-table tbody tr"

// SourceScraper paginates through one portal's listings.
type SourceScraper struct {
	Log       *zap.Logger
	Fetcher   Fetcher
	Extractor *extract.Extractor
}

// FetchSource walks pages 1..maxPages, extracting every valid row. It stops
// early on the first empty or non-200 page (end of listings). Failures are
// recovered to an empty result so one portal outage never aborts a batch;
// FetchSource has no error return by design.
func (s *SourceScraper) FetchSource(ctx context.Context, src model.Source, maxPages int) []model.Scholarship {
	var results []model.Scholarship

	for page := 1; page <= maxPages; page++ {
		body, status, err := s.Fetcher.FetchPage(ctx, src, page)
		if err != nil {
			s.Log.Warn("source fetch failed",
				zap.String("source", src.ID),
				zap.Int("page", page),
				zap.Error(err),
			)
			return nil
		}
		if status != http.StatusOK {
			// portals 404 past the last page
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			s.Log.Warn("source parse failed",
				zap.String("source", src.ID),
				zap.Int("page", page),
				zap.Error(err),
			)
			return nil
		}

		rows := doc.Find(listingRowSelector)
		if rows.Length() == 0 {
			break
		}

		rows.Each(func(_ int, row *goquery.Selection) {
			if sch, ok := s.Extractor.Extract(row, src); ok {
				results = append(results, sch)
			}
		})
	}

	s.Log.Debug("source scraped",
		zap.String("source", src.ID),
		zap.Int("scholarships", len(results)),
	)
	return results
}
