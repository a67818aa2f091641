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

const requiredBullets = 3

// ContentAnalyzer produces the final formatted market-impact bullets for an
// approved candidate. A rejected or wrongly-sized model response triggers
// one stricter retry, then a curated template keyed by the candidate's
// category; the cycle never fails on analysis.
type ContentAnalyzer struct {
	client ports.CompletionClient
	logger *slog.Logger
}

// NewContentAnalyzer wires the shared completion client.
func NewContentAnalyzer(client ports.CompletionClient, logger *slog.Logger) *ContentAnalyzer {
	return &ContentAnalyzer{client: client, logger: logger}
}

// Analyze returns exactly three market-impact bullets for the candidate.
func (a *ContentAnalyzer) Analyze(ctx context.Context, candidate domain.Article) domain.Summary {
	if bullets, ok := a.request(ctx, analysisPrompt(candidate, false)); ok {
		return domain.Summary{Bullets: bullets}
	}

	a.debug("analysis retry with strict prompt", "title", candidate.Title)
	if bullets, ok := a.request(ctx, analysisPrompt(candidate, true)); ok {
		return domain.Summary{Bullets: bullets}
	}

	a.warn("analysis fell back to curated bullets", "title", candidate.Title, "category", candidate.Category)
	return domain.Summary{Bullets: curatedBullets(candidate.Category), Curated: true}
}

func (a *ContentAnalyzer) request(ctx context.Context, prompt string) ([]string, bool) {
	raw, err := a.client.Complete(ctx, prompt, ports.CompleteOptions{
		MaxTokens:   300,
		Temperature: 0.4,
	})
	if err != nil {
		a.warn("analysis gateway failed", "error", err)
		return nil, false
	}

	result, err := sanitize.Sanitize(raw)
	if err != nil {
		a.debug("analysis output rejected", "error", err)
		return nil, false
	}
	if len(result.Bullets) != requiredBullets {
		a.debug("analysis bullet count off", "count", len(result.Bullets))
		return nil, false
	}
	return result.Bullets, true
}

func analysisPrompt(candidate domain.Article, strict bool) string {
	content := candidate.Content
	if content == "" {
		content = candidate.Summary
	}
	if len(content) > 800 {
		content = content[:800]
	}

	var b strings.Builder
	b.WriteString("Analyze this news article and provide exactly 3 bullet points about market impact.\n\n")
	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("- Each bullet: 1 concise sentence (10-15 words max)\n")
	b.WriteString("- Format: • [market impact statement]\n")
	b.WriteString("- Focus: market implications, investor impact, strategic significance\n")
	b.WriteString("- NO thinking process, analysis steps, or meta-commentary\n")
	if strict {
		b.WriteString("- Output ONLY the 3 bullet lines. Nothing before them, nothing after them.\n")
		b.WriteString("- Every bullet must be a complete sentence ending with a period.\n")
	}
	fmt.Fprintf(&b, "\nArticle: %s\n\n%s\n\nProvide 3 direct market impact bullets:", candidate.Title, content)
	return b.String()
}

// curatedBullets are the hand-written fallbacks per category, used when the
// model cannot produce three clean bullets.
func curatedBullets(category domain.Category) []string {
	switch category {
	case domain.CategoryGold:
		return []string{
			sanitize.Bullet + " Gold demand reflects ongoing inflation hedging strategies by institutions.",
			sanitize.Bullet + " Precious metals markets respond to global economic uncertainty patterns.",
			sanitize.Bullet + " Central bank purchasing activity supports underlying price fundamentals.",
		}
	case domain.CategoryRWA:
		return []string{
			sanitize.Bullet + " Tokenization expands liquidity and fractional ownership across asset classes.",
			sanitize.Bullet + " Institutional adoption of tokenized assets continues gathering momentum.",
			sanitize.Bullet + " Regulatory progress improves the outlook for on-chain real-world assets.",
		}
	case domain.CategoryPartnership:
		return []string{
			sanitize.Bullet + " Strategic partnerships signal deepening institutional commitment to the sector.",
			sanitize.Bullet + " Integration deals broaden distribution channels for digital asset products.",
			sanitize.Bullet + " Alliance activity points to accelerating consolidation among market players.",
		}
	case domain.CategoryRegulatory:
		return []string{
			sanitize.Bullet + " Legal proceedings create market uncertainty and regulatory scrutiny.",
			sanitize.Bullet + " Institutional investors may reassess risk profiles and exposure levels.",
			sanitize.Bullet + " Settlement outcomes could establish important precedents for the industry.",
		}
	default:
		return []string{
			sanitize.Bullet + " Market developments signal evolving institutional investment strategies.",
			sanitize.Bullet + " Regulatory clarity continues improving across traditional finance sectors.",
			sanitize.Bullet + " Investor sentiment reflects broader economic uncertainty and opportunity.",
		}
	}
}

func (a *ContentAnalyzer) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *ContentAnalyzer) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
