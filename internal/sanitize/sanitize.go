// Package sanitize converts raw language-model output into validated
// structured results. Models occasionally leak private deliberation,
// task-compliance remarks, or truncated sentences into their answers; this
// package is the single gatekeeper that keeps any of that from reaching the
// publish channel.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// Bullet is the canonical list marker every kept line is normalized to.
const Bullet = "•"

const (
	// minContentLen drops fragments too short to be a meaningful bullet.
	minContentLen = 15
	// truncationLen is the threshold above which a line without terminal
	// punctuation is treated as cut off mid-clause.
	truncationLen = 30
)

// RejectionError reports why raw output was unusable. Callers route it to
// their fallback path; it never aborts a cycle.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("output rejected: %s", e.Reason)
}

// Result is sanitized output: an ordered sequence of normalized bullets.
type Result struct {
	Bullets []string
}

// Reasoning blocks as emitted by R1-style models. An unterminated opening
// tag poisons everything after it.
var (
	thinkBlockExpr = regexp.MustCompile(`(?is)<think>.*?</think>`)
	thinkOpenExpr  = regexp.MustCompile(`(?is)<think>.*$`)
)

// metaPatterns mark lines narrating the model's own process rather than
// stating market facts. Matched case-insensitively against kept lines.
var metaPatterns = []string{
	"the user wants",
	"the user is asking",
	"i need to",
	"i think",
	"i'll",
	"i will create",
	"let me",
	"i should",
	"looking at the article",
	"the article details",
	"the summary mentions",
	"each bullet point",
	"for the first point",
	"for the second point",
	"for the third point",
	"about market impact, i",
	"word count",
	"words max",
	"10-15 words",
	"as requested",
	"here are three",
	"here are 3",
}

// danglingWords end a clause that was cut off before its object.
var danglingWords = []string{
	"and", "or", "but", "with", "to", "of", "as", "the", "a", "an",
	"for", "by", "in", "on", "at", "from", "that", "which",
}

// StripReasoning removes delimited reasoning segments entirely. The content
// is opaque and never surfaced anywhere.
func StripReasoning(raw string) string {
	out := thinkBlockExpr.ReplaceAllString(raw, "")
	out = thinkOpenExpr.ReplaceAllString(out, "")
	return out
}

// Sanitize extracts a clean bullet list from raw model output.
//
// It strips reasoning blocks, keeps only recognizable list items with the
// marker normalized to the canonical bullet, and rejects the whole output
// when nothing survives, when a kept line reads like meta-commentary, or
// when a kept line appears truncated mid-clause.
func Sanitize(raw string) (Result, error) {
	text := StripReasoning(raw)

	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		content, ok := listItem(line)
		if !ok {
			continue
		}
		if strings.Contains(content, "...") {
			// Ellipsis mid-bullet means the model elided its own text.
			continue
		}
		if len(content) < minContentLen {
			continue
		}
		if reason, meta := metaCommentary(content); meta {
			return Result{}, &RejectionError{Reason: "meta-commentary: " + reason}
		}
		if truncated(content) {
			return Result{}, &RejectionError{Reason: fmt.Sprintf("line appears truncated: %q", tail(content))}
		}
		bullets = append(bullets, Bullet+" "+content)
	}

	if len(bullets) == 0 {
		return Result{}, &RejectionError{Reason: "no usable bullet lines"}
	}
	return Result{Bullets: bullets}, nil
}

// Classify extracts a classification token (e.g. SIMILAR/UNIQUE) and its
// trailing reason from raw model output. The first recognized token wins.
func Classify(raw string, tokens ...string) (token, reason string, err error) {
	text := StripReasoning(raw)
	upper := strings.ToUpper(text)

	best := -1
	for _, candidate := range tokens {
		idx := strings.Index(upper, strings.ToUpper(candidate))
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			token = candidate
		}
	}
	if best < 0 {
		return "", "", &RejectionError{Reason: "no classification token found"}
	}

	rest := text[best+len(token):]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	reason = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))
	return token, strings.TrimSpace(reason), nil
}

// listItem reports whether the line is a recognizable list item and returns
// its content with all leading markers removed.
func listItem(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	switch trimmed[0] {
	case '-', '*':
	default:
		if !strings.HasPrefix(trimmed, Bullet) {
			return "", false
		}
	}

	// Strip repeated markers: models sometimes emit "• •" or "- •".
	content := trimmed
	for {
		next := strings.TrimLeft(content, "-*"+Bullet)
		next = strings.TrimSpace(next)
		if next == content {
			break
		}
		content = next
	}
	return content, content != ""
}

func metaCommentary(content string) (string, bool) {
	lower := strings.ToLower(content)
	for _, pattern := range metaPatterns {
		if strings.Contains(lower, pattern) {
			return pattern, true
		}
	}
	return "", false
}

func truncated(content string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(content), `"')`)
	lower := strings.ToLower(trimmed)
	for _, word := range danglingWords {
		if strings.HasSuffix(lower, " "+word) {
			return true
		}
	}
	switch {
	case strings.HasSuffix(trimmed, "."),
		strings.HasSuffix(trimmed, "!"),
		strings.HasSuffix(trimmed, "?"):
		return false
	}
	return len(trimmed) >= truncationLen
}

func tail(content string) string {
	if len(content) <= 25 {
		return content
	}
	return content[len(content)-25:]
}
