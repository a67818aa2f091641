package judge

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"NewsSentry/internal/domain"
	"NewsSentry/internal/ports"
	"NewsSentry/internal/sanitize"
)

var (
	scoreExpr  = regexp.MustCompile(`SCORE:\s*(\d+)`)
	reasonExpr = regexp.MustCompile(`REASON:\s*(.+)`)
)

// RelevanceScorer judges a candidate against the weighted market-impact
// rubric. It fails closed: when the gateway is unavailable or the response
// unparseable the verdict is NotRelevant with score 0, because posting
// irrelevant content costs more than skipping one candidate.
type RelevanceScorer struct {
	client    ports.CompletionClient
	threshold int
	logger    *slog.Logger
}

// NewRelevanceScorer wires the shared completion client. Scores at or above
// threshold are Relevant.
func NewRelevanceScorer(client ports.CompletionClient, threshold int, logger *slog.Logger) *RelevanceScorer {
	if threshold <= 0 {
		threshold = 5
	}
	return &RelevanceScorer{client: client, threshold: threshold, logger: logger}
}

// Score produces the 0..10 relevance verdict for a candidate.
func (r *RelevanceScorer) Score(ctx context.Context, candidate domain.Article) domain.RelevanceVerdict {
	raw, err := r.client.Complete(ctx, rubricPrompt(candidate), ports.CompleteOptions{
		MaxTokens:   300,
		Temperature: 0.2,
	})
	if err != nil {
		r.warn("relevance gateway failed, treating as not relevant", "title", candidate.Title, "error", err)
		return domain.RelevanceVerdict{Reason: "gateway unavailable, fail-closed"}
	}

	text := sanitize.StripReasoning(raw)

	scoreMatch := scoreExpr.FindStringSubmatch(text)
	if scoreMatch == nil {
		r.warn("relevance score unparseable, treating as not relevant", "title", candidate.Title)
		return domain.RelevanceVerdict{Reason: "score unparseable, fail-closed"}
	}

	score, err := strconv.Atoi(scoreMatch[1])
	if err != nil {
		return domain.RelevanceVerdict{Reason: "score unparseable, fail-closed"}
	}
	if score > 10 {
		score = 10
	}

	reason := "rubric evaluation"
	if m := reasonExpr.FindStringSubmatch(text); m != nil {
		reason = strings.TrimSpace(m[1])
	}

	return domain.RelevanceVerdict{
		Relevant: score >= r.threshold,
		Score:    score,
		Reason:   reason,
	}
}

func rubricPrompt(candidate domain.Article) string {
	content := candidate.Content
	if content == "" {
		content = candidate.Summary
	}
	if len(content) > 1000 {
		content = content[:1000]
	}

	var b strings.Builder
	b.WriteString("Evaluate this news article against the following weighted criteria:\n")
	b.WriteString("- Involvement of major financial institutions or corporates\n")
	b.WriteString("- Specific deals, launches, or regulatory action (not speculation)\n")
	b.WriteString("- Impact on traditional finance markets\n")
	b.WriteString("- Breaking-news status and timeliness\n")
	b.WriteString("- Advancement of real-world asset tokenization\n\n")
	fmt.Fprintf(&b, "ARTICLE TITLE: %s\nARTICLE CONTENT: %s\n\n", candidate.Title, content)
	b.WriteString("SCORING: 0=not relevant, 1-4=low relevance, 5-7=medium relevance, 8-10=high relevance\n\n")
	b.WriteString("Respond with: SCORE: [0-10] | REASON: [brief explanation]")
	return b.String()
}

func (r *RelevanceScorer) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
