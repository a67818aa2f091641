// Package usecase coordinates the ingestion cycle: fetch candidates, judge
// them one at a time, publish at most one verified article per cycle.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"NewsSentry/internal/domain"
	"NewsSentry/internal/judge"
	"NewsSentry/internal/ports"
)

// Orchestrator runs one cycle at a time through the fixed state machine
// Idle, Fetching, Evaluating, Publishing. Each attempt consumes exactly one
// candidate; the cycle ends on the first publish, on pool or attempt
// exhaustion, or on a terminal error.
type Orchestrator struct {
	fetcher   ports.ArticleSource
	extractor ports.ContentExtractor
	dedup     *judge.DedupEngine
	relevance *judge.RelevanceScorer
	analyzer  *judge.ContentAnalyzer
	store     ports.PostedStore
	lease     ports.Lease
	publisher ports.Publisher
	window    *domain.RecencyWindow

	leaseResource string
	leaseTTL      time.Duration
	maxAttempts   int

	logger *slog.Logger
	mu     sync.Mutex
}

// OrchestratorDeps gathers the orchestrator's collaborators.
type OrchestratorDeps struct {
	Fetcher   ports.ArticleSource
	Extractor ports.ContentExtractor
	Dedup     *judge.DedupEngine
	Relevance *judge.RelevanceScorer
	Analyzer  *judge.ContentAnalyzer
	Store     ports.PostedStore
	Lease     ports.Lease
	Publisher ports.Publisher
	Window    *domain.RecencyWindow
}

// NewOrchestrator wires the cycle state machine.
func NewOrchestrator(deps OrchestratorDeps, leaseResource string, leaseTTL time.Duration, maxAttempts int, logger *slog.Logger) *Orchestrator {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if leaseTTL <= 0 {
		leaseTTL = 2 * time.Minute
	}
	if logger != nil {
		logger = logger.With("component", "orchestrator")
	}
	return &Orchestrator{
		fetcher:       deps.Fetcher,
		extractor:     deps.Extractor,
		dedup:         deps.Dedup,
		relevance:     deps.Relevance,
		analyzer:      deps.Analyzer,
		store:         deps.Store,
		lease:         deps.Lease,
		publisher:     deps.Publisher,
		window:        deps.Window,
		leaseResource: leaseResource,
		leaseTTL:      leaseTTL,
		maxAttempts:   maxAttempts,
		logger:        logger,
	}
}

// RunCycle executes one full cycle. When the previous cycle is still
// running the new tick is dropped rather than queued.
func (o *Orchestrator) RunCycle(ctx context.Context) domain.CycleOutcome {
	if !o.mu.TryLock() {
		o.info("previous cycle still running, tick dropped")
		return domain.CycleOutcome{Kind: domain.OutcomeSkipped}
	}
	defer o.mu.Unlock()

	started := time.Now()
	pool := o.buildPool(ctx)
	if len(pool) == 0 {
		o.info("no fresh candidates, cycle idle")
		return domain.CycleOutcome{Kind: domain.OutcomeSkipped}
	}

	attempts := 0
	for _, candidate := range pool {
		if attempts >= o.maxAttempts {
			break
		}
		attempts++

		candidate = o.enrich(ctx, candidate)

		if verdict := o.dedup.Check(ctx, candidate, o.window); verdict.Duplicate {
			o.info("candidate rejected as duplicate", "title", candidate.Title, "reason", verdict.Reason)
			continue
		}

		relevance := o.relevance.Score(ctx, candidate)
		if !relevance.Relevant {
			o.info("candidate below relevance threshold",
				"title", candidate.Title, "score", relevance.Score, "reason", relevance.Reason)
			continue
		}

		summary := o.analyzer.Analyze(ctx, candidate)

		outcome := o.publish(ctx, candidate, relevance, summary)
		outcome.Attempts = attempts
		o.info("cycle finished",
			"outcome", string(outcome.Kind), "attempts", attempts, "elapsed", time.Since(started).String())
		return outcome
	}

	o.info("cycle exhausted without a publishable candidate", "attempts", attempts)
	return domain.CycleOutcome{Kind: domain.OutcomeExhausted, Attempts: attempts}
}

// buildPool flattens fetch results in configured source order and drops
// candidates already posted or already in the window.
func (o *Orchestrator) buildPool(ctx context.Context) []domain.Article {
	results := o.fetcher.FetchAll(ctx)

	var flat []domain.Article
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		for _, article := range result.Articles {
			if seen[article.Hash] {
				continue
			}
			seen[article.Hash] = true
			flat = append(flat, article)
		}
	}
	if len(flat) == 0 {
		return nil
	}

	hashes := make([]string, len(flat))
	for i, article := range flat {
		hashes[i] = article.Hash
	}

	// A store outage here is survivable: the Exists re-check under the
	// lease still guards against a double post.
	posted, err := o.store.AlreadyPosted(ctx, hashes)
	if err != nil {
		o.warn("posted-record lookup failed, filtering on window only", "error", err)
		posted = map[string]bool{}
	}

	pool := flat[:0]
	for _, article := range flat {
		if posted[article.Hash] || o.window.ContainsHash(article.Hash) {
			continue
		}
		pool = append(pool, article)
	}

	o.info("candidate pool built", "fetched", len(flat), "pool", len(pool))
	return pool
}

// enrich attaches extracted page content when available. Extraction is best
// effort; the feed summary remains the fallback.
func (o *Orchestrator) enrich(ctx context.Context, candidate domain.Article) domain.Article {
	if o.extractor == nil || candidate.URL == "" {
		return candidate
	}
	content, err := o.extractor.Extract(ctx, candidate.URL)
	if err != nil {
		o.debug("content extraction failed, using feed summary", "url", candidate.URL, "error", err)
		return candidate
	}
	if content != "" {
		candidate.Content = content
	}
	return candidate
}

// publish performs the guarded side effect. The lease serializes publishing
// across instances; the posted-record re-check under the lease keeps the
// operation idempotent. The Telegram write itself is never retried.
func (o *Orchestrator) publish(ctx context.Context, candidate domain.Article, relevance domain.RelevanceVerdict, summary domain.Summary) domain.CycleOutcome {
	token, err := o.lease.Acquire(ctx, o.leaseResource, o.leaseTTL)
	if errors.Is(err, ports.ErrLeaseBusy) {
		o.info("publish lease busy, yielding to peer", "title", candidate.Title)
		return domain.CycleOutcome{Kind: domain.OutcomeSkipped}
	}
	if err != nil {
		return domain.CycleOutcome{Kind: domain.OutcomeFailed, Err: fmt.Errorf("acquire publish lease: %w", err)}
	}
	defer func() {
		if releaseErr := o.lease.Release(ctx, o.leaseResource, token); releaseErr != nil {
			o.warn("lease release failed, ttl will reclaim it", "error", releaseErr)
		}
	}()

	exists, err := o.store.Exists(ctx, candidate.Hash)
	if err != nil {
		return domain.CycleOutcome{Kind: domain.OutcomeFailed, Err: fmt.Errorf("posted-record re-check: %w", err)}
	}
	if exists {
		o.info("candidate already posted by a peer", "title", candidate.Title)
		return domain.CycleOutcome{Kind: domain.OutcomeSkipped, Article: &candidate}
	}

	if err := o.publisher.Publish(ctx, FormatMessage(candidate, summary)); err != nil {
		return domain.CycleOutcome{Kind: domain.OutcomeFailed, Err: fmt.Errorf("publish: %w", err)}
	}

	o.window.Append(candidate)

	record := domain.PostedRecord{
		Hash:     candidate.Hash,
		Title:    candidate.Title,
		Source:   candidate.Source,
		URL:      candidate.URL,
		PostedAt: time.Now(),
		Category: candidate.Category,
		Score:    relevance.Score,
	}
	if err := o.store.Insert(ctx, record); err != nil {
		o.warn("posted-record write failed, retrying once", "error", err)
		if err := o.store.Insert(ctx, record); err != nil {
			o.error("posted-record write failed twice, record missing until next overlap", "hash", record.Hash, "error", err)
		}
	}

	o.info("article published", "title", candidate.Title, "source", candidate.Source, "score", relevance.Score)
	return domain.CycleOutcome{Kind: domain.OutcomePublished, Article: &candidate}
}

// FormatMessage renders the channel post: headline, three bullets, source
// attribution with URL and the original publication time.
func FormatMessage(article domain.Article, summary domain.Summary) string {
	var b strings.Builder
	b.WriteString(article.Title)
	b.WriteString("\n\n")
	for _, bullet := range summary.Bullets {
		b.WriteString(bullet)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nSource: %s (%s)", article.Source, article.URL)
	if !article.PublishedAt.IsZero() {
		fmt.Fprintf(&b, "\nPublished: %s", article.PublishedAt.UTC().Format("2006-01-02 15:04 UTC"))
	}
	return b.String()
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

func (o *Orchestrator) info(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Info(msg, args...)
	}
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}

func (o *Orchestrator) error(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Error(msg, args...)
	}
}
