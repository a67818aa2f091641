package domain

import "strings"

// Category buckets a candidate by its dominant topic. It drives the curated
// fallback bullets when the analyzer cannot produce a clean summary.
type Category string

const (
	CategoryGold        Category = "gold"
	CategoryRWA         Category = "rwa"
	CategoryPartnership Category = "partnership"
	CategoryRegulatory  Category = "regulatory"
	CategoryGeneral     Category = "general"
)

var categoryKeywords = map[Category][]string{
	CategoryRWA: {
		"real world asset", "rwa", "tokenization", "tokenized", "tokenize",
		"asset backed", "security token", "asset digitization",
		"asset tokenization", "backed token", "fractionalized",
	},
	CategoryGold: {
		"gold", "precious metal", "bullion", "gold etf", "gold reserve",
		"central bank gold", "gold futures", "spot gold", "gold backed",
		"xau", "troy ounce",
	},
	CategoryPartnership: {
		"partnership", "collaboration", "joint venture", "strategic alliance",
		"teams up", "partners with", "merger", "acquisition", "agreement",
	},
	CategoryRegulatory: {
		"regulation", "regulatory", "sec", "cftc", "compliance", "license",
		"approval", "framework", "guidance", "lawsuit", "policy",
	},
}

// pricePredictionMarkers identify speculative chart-reading pieces that the
// pipeline never considers, regardless of keyword hits.
var pricePredictionMarkers = []string{
	"price prediction", "price forecast", "price target", "price analysis",
	"technical analysis", "price outlook", "will reach", "could hit",
	"resistance level", "support level", "fibonacci", "moving average",
	"chart analysis", "trading signals", "buy signal", "sell signal",
}

// Categorize picks the category with the most keyword hits across the title
// and summary; title hits count triple. Returns CategoryGeneral when nothing
// matches.
func Categorize(title, summary string) Category {
	titleLower := strings.ToLower(title)
	text := titleLower + " " + strings.ToLower(summary)

	best := CategoryGeneral
	bestScore := 0
	for _, cat := range []Category{CategoryRWA, CategoryGold, CategoryPartnership, CategoryRegulatory} {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if !strings.Contains(text, kw) {
				continue
			}
			if strings.Contains(titleLower, kw) {
				score += 3
			} else {
				score++
			}
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}
	return best
}

// IsPricePrediction reports whether the candidate is a price-speculation
// article that should be dropped at fetch time.
func IsPricePrediction(title, summary string) bool {
	text := strings.ToLower(title + " " + summary)
	for _, marker := range pricePredictionMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
