// Package feeds retrieves candidate articles from configured RSS/Atom
// sources with bounded concurrency and per-source failure isolation.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"NewsSentry/internal/config"
	"NewsSentry/internal/domain"
	"NewsSentry/internal/ports"
)

const userAgent = "NewsSentry/1.0"

// RSSFetcher fans out over all configured sources. One slow or broken feed
// never reduces the pool contributed by the others.
type RSSFetcher struct {
	sources          []config.SourceConfig
	client           *http.Client
	concurrency      int
	perSourceTimeout time.Duration
	maxPerSource     int
	maxAge           time.Duration
	logger           *slog.Logger
}

var _ ports.ArticleSource = (*RSSFetcher)(nil)

// NewRSSFetcher builds a fetcher from configuration.
func NewRSSFetcher(cfg config.FetchConfig, sources []config.SourceConfig, logger *slog.Logger) *RSSFetcher {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	timeout := time.Duration(cfg.PerSourceTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxPerSource := cfg.MaxPerSource
	if maxPerSource <= 0 {
		maxPerSource = 15
	}
	maxAge := time.Duration(cfg.MaxAgeHours) * time.Hour
	if maxAge <= 0 {
		maxAge = 48 * time.Hour
	}

	return &RSSFetcher{
		sources:          sources,
		client:           &http.Client{Timeout: timeout},
		concurrency:      concurrency,
		perSourceTimeout: timeout,
		maxPerSource:     maxPerSource,
		maxAge:           maxAge,
		logger:           logger,
	}
}

// FetchAll retrieves every configured source concurrently. The result slice
// is indexed by configured source order, so candidate ordering downstream is
// deterministic regardless of which source answered first.
func (f *RSSFetcher) FetchAll(ctx context.Context) []domain.FetchResult {
	results := make([]domain.FetchResult, len(f.sources))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, src := range f.sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	for _, result := range results {
		if result.Err != nil {
			f.warn("source fetch failed", "source", result.Source, "error", result.Err)
		}
	}
	return results
}

func (f *RSSFetcher) fetchOne(ctx context.Context, src config.SourceConfig) domain.FetchResult {
	ctx, cancel := context.WithTimeout(ctx, f.perSourceTimeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return domain.FetchResult{Source: src.Name, Err: fmt.Errorf("parse feed %s: %w", src.Name, err)}
	}

	now := time.Now()
	cutoff := now.Add(-f.maxAge)

	items := feed.Items
	if len(items) > f.maxPerSource {
		items = items[:f.maxPerSource]
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		if item.Title == "" {
			continue
		}

		published := now
		switch {
		case item.PublishedParsed != nil:
			published = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			published = *item.UpdatedParsed
		}
		if published.Before(cutoff) {
			continue
		}

		if domain.IsPricePrediction(item.Title, item.Description) {
			continue
		}

		articles = append(articles, domain.Article{
			Hash:         domain.HashArticle(item.Title, src.Name),
			Title:        item.Title,
			Source:       src.Name,
			URL:          item.Link,
			Summary:      item.Description,
			Category:     domain.Categorize(item.Title, item.Description),
			DiscoveredAt: now,
			PublishedAt:  published,
		})
	}

	return domain.FetchResult{Source: src.Name, Articles: articles}
}

func (f *RSSFetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
