package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/extract"
	"scholar-fetch/internal/scholar/model"
)

// sourceFetcher lets tests drive the orchestrator with a fake paginator.
type sourceFetcher interface {
	FetchSource(ctx context.Context, src model.Source, maxPages int) []model.Scholarship
}

// Orchestrator runs the per-source paginator across the whole roster in
// bounded-size concurrent chunks and merges the results by id.
type Orchestrator struct {
	Log     *zap.Logger
	Scraper sourceFetcher
}

func NewOrchestrator(log *zap.Logger, fetcher Fetcher) *Orchestrator {
	return &Orchestrator{
		Log: log,
		Scraper: &SourceScraper{
			Log:       log,
			Fetcher:   fetcher,
			Extractor: extract.NewExtractor(),
		},
	}
}

// ScrapeAll partitions sources into chunks of batchSize; a chunk's sources
// are scraped concurrently and the whole chunk completes before the next one
// starts, which bounds in-flight fetches without caring about ordering.
// Results merge by id, last write wins. onProgress (optional) receives the
// deduplicated running total after each chunk; no output ordering is
// promised.
func (o *Orchestrator) ScrapeAll(
	ctx context.Context,
	sources []model.Source,
	batchSize, maxPages int,
	onProgress func(total int),
) []model.Scholarship {
	if batchSize <= 0 {
		batchSize = 1
	}

	merged := make(map[string]model.Scholarship)
	var mu sync.Mutex

	for start := 0; start < len(sources); start += batchSize {
		end := start + batchSize
		if end > len(sources) {
			end = len(sources)
		}
		chunk := sources[start:end]

		var wg sync.WaitGroup
		for _, src := range chunk {
			wg.Add(1)
			go func(src model.Source) {
				defer wg.Done()
				found := o.Scraper.FetchSource(ctx, src, maxPages)
				mu.Lock()
				for _, sch := range found {
					merged[sch.ID] = sch
				}
				mu.Unlock()
			}(src)
		}
		wg.Wait()

		if onProgress != nil {
			onProgress(len(merged))
		}
	}

	out := make([]model.Scholarship, 0, len(merged))
	for _, sch := range merged {
		out = append(out, sch)
	}
	o.Log.Info("scrape batch complete",
		zap.Int("sources", len(sources)),
		zap.Int("scholarships", len(out)),
	)
	return out
}
