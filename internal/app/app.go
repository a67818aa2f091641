// Package app wires configuration to adapters and use cases and owns the
// process lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsSentry/internal/config"
	"NewsSentry/internal/domain"
	"NewsSentry/internal/infrastructure/feeds"
	"NewsSentry/internal/infrastructure/lease"
	"NewsSentry/internal/infrastructure/llm"
	"NewsSentry/internal/infrastructure/scheduler"
	"NewsSentry/internal/infrastructure/storage"
	"NewsSentry/internal/infrastructure/telegram"
	"NewsSentry/internal/judge"
	"NewsSentry/internal/logging"
	"NewsSentry/internal/ports"
	"NewsSentry/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler *usecase.Scheduler
	query     *usecase.QueryService
	window    *domain.RecencyWindow
	store     ports.PostedStore
	cleanup   []func() error
}

// New builds the runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var cleanup []func() error

	gateway := llm.NewThrottled(newGateway(cfg.Gateway), cfg.Gateway.MaxConcurrent)

	httpClient := &http.Client{Timeout: 20 * time.Second}
	fetcher := feeds.NewRSSFetcher(cfg.Fetch, cfg.Sources, baseLogger.With("component", "fetcher"))
	extractor := feeds.NewExtractor(httpClient)

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	cleanup = append(cleanup, db.Close)
	store := storage.NewPostgresRepository(db)

	publishLease := lease.NewRedisLease(cfg.Redis)
	cleanup = append(cleanup, publishLease.Close)

	window := domain.NewRecencyWindow(cfg.Pipeline.WindowSize)

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Fetcher:   fetcher,
		Extractor: extractor,
		Dedup:     judge.NewDedupEngine(gateway, baseLogger.With("component", "dedup")),
		Relevance: judge.NewRelevanceScorer(gateway, cfg.Pipeline.RelevanceThreshold, baseLogger.With("component", "relevance")),
		Analyzer:  judge.NewContentAnalyzer(gateway, baseLogger.With("component", "analyzer")),
		Store:     store,
		Lease:     publishLease,
		Publisher: telegram.NewNotifier(cfg.Notifications.Telegram),
		Window:    window,
	},
		cfg.Lease.Resource,
		time.Duration(cfg.Lease.TTLSeconds)*time.Second,
		cfg.Pipeline.MaxAttempts,
		baseLogger,
	)

	interval := time.Duration(cfg.Pipeline.IntervalSeconds) * time.Second
	driver := scheduler.NewCronScheduler(interval, baseLogger)

	// One cycle must never outlive the next tick.
	cycleTimeout := interval - time.Minute
	cycleScheduler := usecase.NewScheduler(driver, orchestrator, cycleTimeout, baseLogger)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		scheduler: cycleScheduler,
		query:     usecase.NewQueryService(gateway, baseLogger),
		window:    window,
		store:     store,
		cleanup:   cleanup,
	}, nil
}

func newGateway(cfg config.GatewayConfig) ports.CompletionClient {
	if cfg.Provider == "anthropic" {
		return llm.NewAnthropicClient(cfg)
	}
	return llm.NewDeepSeekClient(cfg)
}

// Query exposes the interactive market-brief service.
func (a *Application) Query() *usecase.QueryService {
	return a.query
}

// Run warms the recency window, starts the scheduler and blocks until ctx
// is cancelled, then stops gracefully.
func (a *Application) Run(ctx context.Context) error {
	a.seedWindow(ctx)

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("application started",
		"sources", len(a.cfg.Sources), "interval", a.cfg.Pipeline.IntervalSeconds)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler did not stop cleanly", "error", err)
	}

	for _, fn := range a.cleanup {
		if err := fn(); err != nil {
			a.logger.Warn("cleanup failed", "error", err)
		}
	}

	a.logger.Info("application stopped")
	return nil
}

// seedWindow warms the dedup window from the most recent posted records so
// a restart does not forget what was just published.
func (a *Application) seedWindow(ctx context.Context) {
	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	records, err := a.store.RecentTitles(seedCtx, a.cfg.Pipeline.WindowSize)
	if err != nil {
		a.logger.Warn("window seeding failed, starting empty", "error", err)
		return
	}

	// Records arrive newest first; append oldest first to keep window order.
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		a.window.Append(domain.Article{
			Hash:        rec.Hash,
			Title:       rec.Title,
			Source:      rec.Source,
			URL:         rec.URL,
			Category:    rec.Category,
			PublishedAt: rec.PostedAt,
		})
	}
	a.logger.Info("recency window seeded", "entries", a.window.Len())
}
