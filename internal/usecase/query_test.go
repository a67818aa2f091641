package usecase

import (
	"context"
	"strings"
	"testing"

	"NewsSentry/internal/domain"
)

func TestMarketBriefReturnsModelBullets(t *testing.T) {
	t.Parallel()

	gateway := &scriptClient{responses: []string{cleanAnalysis}}
	service := NewQueryService(gateway, nil)

	summary := service.MarketBrief(context.Background(), domain.CategoryGold)

	if summary.Curated {
		t.Fatal("clean model output should not be curated")
	}
	if len(summary.Bullets) != 3 {
		t.Fatalf("bullets = %d, want 3", len(summary.Bullets))
	}
}

func TestMarketBriefFallsBackWhenGatewayDown(t *testing.T) {
	t.Parallel()

	gateway := &scriptClient{} // empty script yields ErrGatewayUnavailable
	service := NewQueryService(gateway, nil)

	summary := service.MarketBrief(context.Background(), domain.CategoryRWA)

	if !summary.Curated {
		t.Fatal("gateway failure must serve the curated brief")
	}
	if len(summary.Bullets) != 3 {
		t.Fatalf("curated bullets = %d, want 3", len(summary.Bullets))
	}
	if !strings.Contains(strings.ToLower(summary.Bullets[0]), "tokenized") {
		t.Fatalf("RWA brief expected, got %q", summary.Bullets[0])
	}
}

func TestMarketBriefFallsBackOnRejectedOutput(t *testing.T) {
	t.Parallel()

	gateway := &scriptClient{responses: []string{"I need to think about the gold market first..."}}
	service := NewQueryService(gateway, nil)

	summary := service.MarketBrief(context.Background(), domain.CategoryGold)

	if !summary.Curated {
		t.Fatal("rejected output must serve the curated brief")
	}
}
