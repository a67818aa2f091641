package llm

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"NewsSentry/internal/ports"
)

// Throttled caps concurrent calls to the underlying completion client. The
// pipeline and the interactive-query path share one instance so the
// inference backend never sees more than the configured number of
// simultaneous requests; callers over the cap wait instead of failing.
type Throttled struct {
	inner ports.CompletionClient
	sem   *semaphore.Weighted
}

var _ ports.CompletionClient = (*Throttled)(nil)

// NewThrottled wraps inner with a concurrency cap.
func NewThrottled(inner ports.CompletionClient, maxConcurrent int) *Throttled {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Throttled{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Complete blocks until a slot is free (or ctx is done), then delegates.
func (t *Throttled) Complete(ctx context.Context, prompt string, opts ports.CompleteOptions) (string, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire gateway slot: %w", err)
	}
	defer t.sem.Release(1)

	return t.inner.Complete(ctx, prompt, opts)
}
