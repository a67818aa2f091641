// Package judge holds the three model-assisted evaluation stages of the
// ingestion pipeline: duplicate detection, relevance scoring, and the final
// market-impact analysis.
package judge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsSentry/internal/domain"
	"NewsSentry/internal/ports"
	"NewsSentry/internal/sanitize"
)

const (
	verdictSimilar = "SIMILAR"
	verdictUnique  = "UNIQUE"
)

// DedupEngine judges whether a candidate covers the same story as a recent
// accepted article. It fails open: an unavailable or unparseable gateway
// yields Unique, because losing real news to an infrastructure fault costs
// more than an occasional near-duplicate.
type DedupEngine struct {
	client ports.CompletionClient
	logger *slog.Logger
}

// NewDedupEngine wires the shared completion client.
func NewDedupEngine(client ports.CompletionClient, logger *slog.Logger) *DedupEngine {
	return &DedupEngine{client: client, logger: logger}
}

// Check classifies the candidate against the recency window. An exact
// normalized title+source repeat short-circuits to Duplicate without a
// gateway call.
func (d *DedupEngine) Check(ctx context.Context, candidate domain.Article, window *domain.RecencyWindow) domain.DedupVerdict {
	if window.ContainsHash(candidate.Hash) {
		return domain.DedupVerdict{Duplicate: true, Reason: "exact repeat of a windowed article"}
	}

	titles := window.Titles()
	if len(titles) == 0 {
		return domain.DedupVerdict{}
	}

	raw, err := d.client.Complete(ctx, similarityPrompt(candidate.Title, titles), ports.CompleteOptions{
		MaxTokens:   300,
		Temperature: 0.2,
	})
	if err != nil {
		d.warn("dedup gateway failed, treating as unique", "title", candidate.Title, "error", err)
		return domain.DedupVerdict{Reason: "gateway unavailable, fail-open"}
	}

	token, reason, err := sanitize.Classify(raw, verdictSimilar, verdictUnique)
	if err != nil {
		d.warn("dedup verdict unparseable, treating as unique", "title", candidate.Title, "error", err)
		return domain.DedupVerdict{Reason: "verdict unparseable, fail-open"}
	}

	if token == verdictSimilar {
		return domain.DedupVerdict{Duplicate: true, Reason: reason}
	}
	return domain.DedupVerdict{Reason: reason}
}

func similarityPrompt(title string, recentTitles []string) string {
	var b strings.Builder
	b.WriteString("Analyze if this news article is essentially the SAME STORY as any recent articles:\n\n")
	fmt.Fprintf(&b, "NEW ARTICLE: %q\n\nRECENT UNIQUE ARTICLES:\n", title)
	for _, recent := range recentTitles {
		fmt.Fprintf(&b, "- %q\n", recent)
	}
	b.WriteString("\nReturn \"SIMILAR: [reason]\" if the new article covers essentially the same event as any recent article (same companies, same announcement, same development).\n")
	b.WriteString("Return \"UNIQUE: [reason]\" if it is genuinely different news, even if related to similar topics.\n\n")
	b.WriteString("Consider: different sources reporting the same announcement = SIMILAR. Related but different developments = UNIQUE.")
	return b.String()
}

func (d *DedupEngine) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
