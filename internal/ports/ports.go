package ports

import (
	"context"
	"errors"
	"time"

	"NewsSentry/internal/domain"
)

// Gateway error taxonomy. Callers pick retry/fallback policy; the clients
// themselves never retry.
var (
	ErrGatewayTimeout     = errors.New("completion gateway timeout")
	ErrGatewayUnavailable = errors.New("completion gateway unavailable")
	ErrGatewayMalformed   = errors.New("completion gateway returned malformed response")
)

// ErrLeaseBusy signals that another instance holds the publish lease. It is
// a quiet no-op for the orchestrator, not a failure.
var ErrLeaseBusy = errors.New("publish lease held by another instance")

// CompleteOptions tunes a single completion call.
type CompleteOptions struct {
	MaxTokens   int
	Temperature float64
}

// CompletionClient is a stateless text-in/text-out wrapper around a
// language-model endpoint. Implementations must be safe for concurrent use;
// each call is independent and carries no memory of prior calls.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

// ArticleSource retrieves candidate articles from all configured sources.
// One result per source, in configured order; a failing source contributes
// an Err result without affecting the others.
type ArticleSource interface {
	FetchAll(ctx context.Context) []domain.FetchResult
}

// ContentExtractor pulls readable article text from a candidate's URL.
// Best effort: callers fall back to the feed summary on error.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// PostedStore is the durable posted-article record, queried before every
// publish attempt and appended after each successful one.
type PostedStore interface {
	AlreadyPosted(ctx context.Context, hashes []string) (map[string]bool, error)
	Exists(ctx context.Context, hash string) (bool, error)
	Insert(ctx context.Context, record domain.PostedRecord) error
	RecentTitles(ctx context.Context, limit int) ([]domain.PostedRecord, error)
}

// Lease is the distributed mutual-exclusion primitive serializing the
// publish side effect across instances.
type Lease interface {
	Acquire(ctx context.Context, resource string, ttl time.Duration) (token string, err error)
	Release(ctx context.Context, resource, token string) error
}

// Publisher writes one formatted message to the output channel.
type Publisher interface {
	Publish(ctx context.Context, message string) error
}

// Scheduler drives recurring cycle execution.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
