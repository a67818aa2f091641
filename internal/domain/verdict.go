package domain

// DedupVerdict is the dedup engine's judgment of a candidate against the
// recency window.
type DedupVerdict struct {
	Duplicate bool
	Reason    string
}

// RelevanceVerdict is the relevance scorer's judgment against the rubric.
type RelevanceVerdict struct {
	Relevant bool
	Score    int
	Reason   string
}

// Summary is the analyzer's final formatted output: exactly three
// market-impact bullets.
type Summary struct {
	Bullets []string
	Curated bool
}

// OutcomeKind enumerates how a cycle ended.
type OutcomeKind string

const (
	OutcomePublished OutcomeKind = "published"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeExhausted OutcomeKind = "exhausted"
	OutcomeFailed    OutcomeKind = "failed"
)

// CycleOutcome is the terminal result of one scheduled cycle. It exists for
// logging only and is never persisted.
type CycleOutcome struct {
	Kind     OutcomeKind
	Article  *Article
	Attempts int
	Err      error
}
