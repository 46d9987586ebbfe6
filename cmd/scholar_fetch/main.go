package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"scholar-fetch/internal/middleware/logger"
	"scholar-fetch/internal/scholar/api"
	"scholar-fetch/internal/scholar/cache"
	"scholar-fetch/internal/scholar/essay"
	"scholar-fetch/internal/scholar/model"
	"scholar-fetch/internal/scholar/scheduler"
	"scholar-fetch/internal/scholar/scrape"
	"scholar-fetch/internal/scholar/service"
	"scholar-fetch/internal/scholar/store"
	"scholar-fetch/pkg/config"
)

// storeAdapter narrows SyncStore to the façade's collaborator interface.
type storeAdapter struct {
	*store.SyncStore
}

func (a storeAdapter) NewPager(pageSize int) service.PageReader {
	return a.SyncStore.NewPager(pageSize)
}

func main() {
	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()
	log.Info("starting scholar-fetch...")

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	sources, err := model.LoadSources(cfg.Scrape.SourcesFile)
	if err != nil {
		panic(err)
	}
	log.Info("loaded source roster", zap.Int("sources", len(sources)))

	stores := store.MustMongo(
		ctx,
		cfg.Mongo.Host,
		cfg.Mongo.DBName,
		cfg.Mongo.Username,
		cfg.Mongo.Password,
		cfg.Mongo.AuthSource,
	)
	syncStore := store.NewSyncStore(log, stores)
	statusStore := store.NewStatusStore(log, stores)
	appConfig := store.NewAppConfigStore(stores)

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		panic(err)
	}
	pageCache := cache.NewPageCache(log, rdb)

	fetcher := scrape.NewPortalFetcher(cfg.Scrape.FetchTimeout.Std(), cfg.Scrape.ProxyBaseURL)
	orchestrator := scrape.NewOrchestrator(log, fetcher)

	retrieval := &service.Retrieval{
		Log:          log,
		Store:        storeAdapter{syncStore},
		Cache:        pageCache,
		Scraper:      orchestrator,
		Sources:      sources,
		BatchSize:    cfg.Scrape.BatchSize,
		LiveMaxPages: cfg.Scrape.LiveMaxPages,
	}

	sched := scheduler.New(
		log,
		orchestrator,
		syncStore,
		sources,
		cfg.Scrape.BatchSize,
		cfg.Scrape.MaxPages,
		cfg.Scrape.SyncInterval.Std(),
		cfg.Scrape.StaleAfter.Std(),
	)
	if err := sched.Start(ctx); err != nil {
		panic(err)
	}
	defer sched.Stop()

	srv := &api.Server{
		Log:       log,
		Retrieval: retrieval,
		Store:     syncStore,
		Status:    statusStore,
		Essays:    essay.NewGenerator(log, appConfig, cfg.Essay.Models),
		Config:    appConfig,
		Proxy:     api.NewProxy(log, sources, cfg.Scrape.FetchTimeout.Std()),
	}
	r := srv.Router()
	_ = r.SetTrustedProxies(nil)
	log.Info("scholar-fetch is running", zap.String("address", cfg.ListenAddr))
	_ = r.Run(cfg.ListenAddr)
}
