// Package service implements the retrieval façade: the one entry point that
// answers "give me page N of scholarships" by trying the persistent store,
// then the local cache, then a live scrape.
package service

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/model"
)

// PageReader is one session's view of the store's read path.
type PageReader interface {
	ReadPage(ctx context.Context, page int) ([]model.Scholarship, int64, error)
}

// StoreClient is the store sync collaborator.
type StoreClient interface {
	NewPager(pageSize int) PageReader
	SyncScholarships(ctx context.Context, items []model.Scholarship) error
}

// CacheClient is the local cache collaborator.
type CacheClient interface {
	Get(ctx context.Context) ([]model.Scholarship, bool)
	Set(ctx context.Context, items []model.Scholarship) error
}

// ScrapeClient is the live-scrape collaborator.
type ScrapeClient interface {
	ScrapeAll(ctx context.Context, sources []model.Source, batchSize, maxPages int, onProgress func(int)) []model.Scholarship
}

// Retrieval wires the three data layers behind one strategy. Collaborators
// are injected; there is exactly one code path for the store/cache/live
// trichotomy.
type Retrieval struct {
	Log     *zap.Logger
	Store   StoreClient
	Cache   CacheClient
	Scraper ScrapeClient

	Sources      []model.Source
	BatchSize    int
	LiveMaxPages int // live mode trades completeness for latency
}

// Session carries the paging cursors for one request chain. Sessions are
// cheap; create one per consumer rather than sharing one across callers.
type Session struct {
	r      *Retrieval
	pagers map[int]PageReader // keyed by page size
}

func (r *Retrieval) NewSession() *Session {
	return &Session{r: r, pagers: make(map[int]PageReader)}
}

func (s *Session) pagerFor(pageSize int) PageReader {
	p, ok := s.pagers[pageSize]
	if !ok {
		p = s.r.Store.NewPager(pageSize)
		s.pagers[pageSize] = p
	}
	return p
}

// GetScholarships resolves one page. Store first (fast path), cache second,
// live scrape last. Never errors: total data unavailability comes back as an
// empty page with totalCount 0, which callers must treat as "no data now".
func (s *Session) GetScholarships(ctx context.Context, page, pageSize int, onProgress func(int)) ([]model.Scholarship, int64) {
	r := s.r
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	items, total, err := s.pagerFor(pageSize).ReadPage(ctx, page)
	if err == nil && total > 0 {
		return items, total
	}
	if err != nil {
		r.Log.Warn("store read failed, falling back to cache", zap.Error(err))
	}

	if cached, ok := r.Cache.Get(ctx); ok {
		return slicePage(cached, page, pageSize), int64(len(cached))
	}

	scraped := r.Scraper.ScrapeAll(ctx, r.Sources, r.BatchSize, r.LiveMaxPages, onProgress)
	if len(scraped) == 0 {
		return nil, 0
	}

	// No relevance signal exists; shuffling keeps any single source from
	// dominating the visible order.
	rand.Shuffle(len(scraped), func(i, j int) {
		scraped[i], scraped[j] = scraped[j], scraped[i]
	})

	if err := r.Cache.Set(ctx, scraped); err != nil {
		r.Log.Warn("cache seed failed", zap.Error(err))
	}

	// Seed the store without blocking the response. Upserts are idempotent,
	// so a caller abandoning interest mid-sync costs nothing.
	go func(items []model.Scholarship) {
		if err := r.Store.SyncScholarships(context.Background(), items); err != nil {
			r.Log.Warn("background store sync failed", zap.Error(err))
		}
	}(scraped)

	return slicePage(scraped, page, pageSize), int64(len(scraped))
}

func slicePage(items []model.Scholarship, page, pageSize int) []model.Scholarship {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
