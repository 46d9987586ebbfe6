// Package scheduler runs the periodic deep sync: a full-depth scrape of the
// whole roster, a store sync, and the stale-listing purge.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/model"
	"scholar-fetch/internal/scholar/scrape"
	"scholar-fetch/internal/scholar/store"
)

type Scheduler struct {
	Log          *zap.Logger
	Orchestrator *scrape.Orchestrator
	Store        *store.SyncStore
	Sources      []model.Source
	BatchSize    int
	MaxPages     int
	StaleAfter   time.Duration

	cron *cron.Cron
	spec string
}

func New(
	log *zap.Logger,
	orch *scrape.Orchestrator,
	st *store.SyncStore,
	sources []model.Source,
	batchSize, maxPages int,
	interval, staleAfter time.Duration,
) *Scheduler {
	return &Scheduler{
		Log:          log,
		Orchestrator: orch,
		Store:        st,
		Sources:      sources,
		BatchSize:    batchSize,
		MaxPages:     maxPages,
		StaleAfter:   staleAfter,
		cron:         cron.New(),
		spec:         fmt.Sprintf("@every %s", interval),
	}
}

// Start registers the sync job and runs one immediately so the store is
// populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.Log.Info("sync scheduler started", zap.String("spec", s.spec))

	go s.runSync(ctx)
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.Log.Info("sync scheduler stopped")
}

func (s *Scheduler) runSync(ctx context.Context) {
	started := time.Now()
	s.Log.Info("deep sync started",
		zap.Int("sources", len(s.Sources)),
		zap.Int("maxPages", s.MaxPages),
	)

	scraped := s.Orchestrator.ScrapeAll(ctx, s.Sources, s.BatchSize, s.MaxPages, func(total int) {
		s.Log.Info("deep sync progress", zap.Int("scholarships", total))
	})
	if len(scraped) == 0 {
		s.Log.Warn("deep sync found nothing; store left untouched")
		return
	}

	if err := s.Store.SyncScholarships(ctx, scraped); err != nil {
		s.Log.Error("deep sync store write failed", zap.Error(err))
		return
	}

	if s.StaleAfter > 0 {
		purged, err := s.Store.PurgeStale(ctx, s.StaleAfter)
		if err != nil {
			s.Log.Error("stale purge failed", zap.Error(err))
		} else if purged > 0 {
			s.Log.Info("purged stale scholarships", zap.Int64("count", purged))
		}
	}

	s.Log.Info("deep sync complete",
		zap.Int("scholarships", len(scraped)),
		zap.Duration("took", time.Since(started)),
	)
}
