package judge

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"NewsSentry/internal/domain"
	"NewsSentry/internal/ports"
)

// fakeClient replays scripted completions (or errors) in order.
type fakeClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (f *fakeClient) Complete(ctx context.Context, prompt string, opts ports.CompleteOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)

	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", ports.ErrGatewayUnavailable
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func candidate(title string) domain.Article {
	return domain.Article{
		Hash:         domain.HashArticle(title, "coindesk"),
		Title:        title,
		Source:       "coindesk",
		Summary:      "summary of " + title,
		Category:     domain.CategoryGold,
		DiscoveredAt: time.Now(),
	}
}

func windowWith(titles ...string) *domain.RecencyWindow {
	w := domain.NewRecencyWindow(15)
	for _, title := range titles {
		w.Append(candidate(title))
	}
	return w
}

func TestDedupExactHashShortCircuits(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	engine := NewDedupEngine(client, nil)
	window := windowWith("BlackRock Launches Tokenized Treasury Fund")

	// Same title, different spacing: identical normalized hash.
	verdict := engine.Check(context.Background(), candidate("BlackRock  Launches Tokenized   Treasury Fund"), window)

	if !verdict.Duplicate {
		t.Fatal("expected duplicate verdict for exact repeat")
	}
	if client.calls() != 0 {
		t.Fatalf("gateway invoked %d times for an exact repeat", client.calls())
	}
}

func TestDedupEmptyWindowIsUnique(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	engine := NewDedupEngine(client, nil)

	verdict := engine.Check(context.Background(), candidate("Fresh story"), domain.NewRecencyWindow(15))
	if verdict.Duplicate {
		t.Fatal("empty window must never flag duplicates")
	}
	if client.calls() != 0 {
		t.Fatal("gateway should not be consulted against an empty window")
	}
}

func TestDedupSimilarVerdict(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: []string{"SIMILAR: same BlackRock fund announcement"}}
	engine := NewDedupEngine(client, nil)
	window := windowWith("BlackRock Launches Tokenized Treasury Fund")

	verdict := engine.Check(context.Background(), candidate("BlackRock debuts treasury fund on chain"), window)
	if !verdict.Duplicate {
		t.Fatal("expected duplicate verdict")
	}
	if verdict.Reason != "same BlackRock fund announcement" {
		t.Fatalf("unexpected reason: %q", verdict.Reason)
	}

	if !strings.Contains(client.prompts[0], "BlackRock Launches Tokenized Treasury Fund") {
		t.Fatal("window titles missing from similarity prompt")
	}
}

func TestDedupFailsOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client *fakeClient
	}{
		{name: "gateway error", client: &fakeClient{errs: []error{ports.ErrGatewayUnavailable}}},
		{name: "unparseable verdict", client: &fakeClient{responses: []string{"maybe the same, hard to tell"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := NewDedupEngine(tt.client, nil)
			window := windowWith("Existing story")

			verdict := engine.Check(context.Background(), candidate("New story"), window)
			if verdict.Duplicate {
				t.Fatal("dedup must fail open to unique")
			}
		})
	}
}

func TestRelevanceThresholdBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score        string
		wantRelevant bool
		wantScore    int
	}{
		{score: "4", wantRelevant: false, wantScore: 4},
		{score: "5", wantRelevant: true, wantScore: 5},
		{score: "6", wantRelevant: true, wantScore: 6},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("score "+tt.score, func(t *testing.T) {
			t.Parallel()
			client := &fakeClient{responses: []string{"SCORE: " + tt.score + " | REASON: institutional deal specifics"}}
			scorer := NewRelevanceScorer(client, 5, nil)

			verdict := scorer.Score(context.Background(), candidate("Some deal"))
			if verdict.Relevant != tt.wantRelevant {
				t.Fatalf("relevant = %v, want %v", verdict.Relevant, tt.wantRelevant)
			}
			if verdict.Score != tt.wantScore {
				t.Fatalf("score = %d, want %d", verdict.Score, tt.wantScore)
			}
			if verdict.Reason != "institutional deal specifics" {
				t.Fatalf("unexpected reason: %q", verdict.Reason)
			}
		})
	}
}

func TestRelevanceParsesThroughReasoning(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: []string{
		"<think>SCORE: 9 seems too high, the deal is small</think>\nSCORE: 6 | REASON: moderate impact",
	}}
	scorer := NewRelevanceScorer(client, 5, nil)

	verdict := scorer.Score(context.Background(), candidate("Deal"))
	if verdict.Score != 6 {
		t.Fatalf("score = %d, want 6 (reasoning block must be ignored)", verdict.Score)
	}
}

func TestRelevanceFailsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client *fakeClient
	}{
		{name: "gateway error", client: &fakeClient{errs: []error{ports.ErrGatewayTimeout}}},
		{name: "no score in output", client: &fakeClient{responses: []string{"this article seems fine to me"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			scorer := NewRelevanceScorer(tt.client, 5, nil)

			verdict := scorer.Score(context.Background(), candidate("Some deal"))
			if verdict.Relevant {
				t.Fatal("relevance must fail closed")
			}
			if verdict.Score != 0 {
				t.Fatalf("score = %d, want 0", verdict.Score)
			}
		})
	}
}

const cleanBullets = "• Institutional demand for tokenized treasuries accelerates allocation shifts.\n" +
	"• Regulatory approval opens custody services to national banks immediately.\n" +
	"• Gold reserve purchases signal continued central bank diversification."

func TestAnalyzeFirstTry(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: []string{cleanBullets}}
	analyzer := NewContentAnalyzer(client, nil)

	summary := analyzer.Analyze(context.Background(), candidate("Big fund launch"))
	if summary.Curated {
		t.Fatal("clean output must not be curated")
	}
	if len(summary.Bullets) != 3 {
		t.Fatalf("expected 3 bullets, got %d", len(summary.Bullets))
	}
	if client.calls() != 1 {
		t.Fatalf("expected 1 gateway call, got %d", client.calls())
	}
}

func TestAnalyzeRetriesWithStrictPrompt(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: []string{
		"I think the market impact here is significant but hard to pin down.",
		cleanBullets,
	}}
	analyzer := NewContentAnalyzer(client, nil)

	summary := analyzer.Analyze(context.Background(), candidate("Big fund launch"))
	if summary.Curated {
		t.Fatal("retry succeeded, output must not be curated")
	}
	if client.calls() != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", client.calls())
	}
	if !strings.Contains(client.prompts[1], "ONLY the 3 bullet lines") {
		t.Fatal("second attempt must use the strict prompt")
	}
}

func TestAnalyzeWrongBulletCountFallsBack(t *testing.T) {
	t.Parallel()

	twoBullets := "• Institutional demand for tokenized treasuries accelerates allocation shifts.\n" +
		"• Regulatory approval opens custody services to national banks immediately."
	client := &fakeClient{responses: []string{twoBullets, twoBullets}}
	analyzer := NewContentAnalyzer(client, nil)

	art := candidate("Gold rally continues")
	art.Category = domain.CategoryGold

	summary := analyzer.Analyze(context.Background(), art)
	if !summary.Curated {
		t.Fatal("expected curated fallback after two short responses")
	}
	if len(summary.Bullets) != 3 {
		t.Fatalf("curated fallback must have 3 bullets, got %d", len(summary.Bullets))
	}
	if !strings.Contains(summary.Bullets[0], "Gold") && !strings.Contains(summary.Bullets[2], "Central bank") {
		t.Fatalf("expected gold-specific curated bullets, got %v", summary.Bullets)
	}
	if client.calls() != 2 {
		t.Fatalf("expected exactly 2 gateway calls, got %d", client.calls())
	}
}

func TestAnalyzeGatewayDownFallsBack(t *testing.T) {
	t.Parallel()

	client := &fakeClient{errs: []error{ports.ErrGatewayUnavailable, ports.ErrGatewayUnavailable}}
	analyzer := NewContentAnalyzer(client, nil)

	art := candidate("Partnership news")
	art.Category = domain.CategoryPartnership

	summary := analyzer.Analyze(context.Background(), art)
	if !summary.Curated {
		t.Fatal("expected curated fallback when gateway is down")
	}
	if len(summary.Bullets) != 3 {
		t.Fatalf("curated fallback must have 3 bullets, got %d", len(summary.Bullets))
	}
}
