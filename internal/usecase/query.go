package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsSentry/internal/domain"
	"NewsSentry/internal/ports"
	"NewsSentry/internal/sanitize"
)

// QueryService answers on-demand market-brief requests for a topic. It
// shares the throttled completion client with the pipeline, so interactive
// requests and cycle stages compete for the same concurrency slots.
type QueryService struct {
	client ports.CompletionClient
	logger *slog.Logger
}

// NewQueryService wires the shared completion client.
func NewQueryService(client ports.CompletionClient, logger *slog.Logger) *QueryService {
	if logger != nil {
		logger = logger.With("component", "query")
	}
	return &QueryService{client: client, logger: logger}
}

// MarketBrief returns a three-bullet brief for the topic. A rejected or
// unavailable model response falls back to the topic's curated brief.
func (q *QueryService) MarketBrief(ctx context.Context, topic domain.Category) domain.Summary {
	raw, err := q.client.Complete(ctx, briefPrompt(topic), ports.CompleteOptions{
		MaxTokens:   300,
		Temperature: 0.4,
	})
	if err != nil {
		q.warn("brief gateway failed, serving curated brief", "topic", topic, "error", err)
		return curatedBrief(topic)
	}

	result, err := sanitize.Sanitize(raw)
	if err != nil || len(result.Bullets) != 3 {
		q.warn("brief output rejected, serving curated brief", "topic", topic)
		return curatedBrief(topic)
	}
	return domain.Summary{Bullets: result.Bullets}
}

func briefPrompt(topic domain.Category) string {
	subject := "current gold market conditions, institutional demand and price drivers"
	if topic == domain.CategoryRWA {
		subject = "the current state of real-world asset tokenization, institutional adoption and regulatory developments"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Provide exactly 3 bullet points summarizing %s.\n\n", subject)
	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("- Each bullet: 1 concise sentence (10-15 words max)\n")
	b.WriteString("- Format: • [market insight]\n")
	b.WriteString("- NO thinking process, analysis steps, or meta-commentary\n")
	b.WriteString("\nProvide 3 direct market insight bullets:")
	return b.String()
}

func curatedBrief(topic domain.Category) domain.Summary {
	if topic == domain.CategoryRWA {
		return domain.Summary{
			Curated: true,
			Bullets: []string{
				sanitize.Bullet + " Tokenized treasuries and funds keep drawing institutional inflows.",
				sanitize.Bullet + " Major asset managers continue expanding on-chain product lines.",
				sanitize.Bullet + " Clearer regulation is gradually widening the investable RWA universe.",
			},
		}
	}
	return domain.Summary{
		Curated: true,
		Bullets: []string{
			sanitize.Bullet + " Central bank buying remains a structural support for gold prices.",
			sanitize.Bullet + " Inflation hedging keeps institutional gold allocations elevated.",
			sanitize.Bullet + " Macro uncertainty sustains safe-haven demand for precious metals.",
		},
	}
}

func (q *QueryService) warn(msg string, args ...any) {
	if q.logger != nil {
		q.logger.Warn(msg, args...)
	}
}
