package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Article is a candidate news item discovered by the source fetcher.
// Immutable once created; identity is the content hash.
type Article struct {
	Hash         string
	Title        string
	Source       string
	URL          string
	Summary      string
	Content      string
	Category     Category
	DiscoveredAt time.Time
	PublishedAt  time.Time
}

// HashArticle derives the content hash from the normalized title and source.
// Two candidates with the same normalized title+source are exact repeats.
func HashArticle(title, source string) string {
	key := NormalizeTitle(title) + "|" + strings.ToLower(strings.TrimSpace(source))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// NormalizeTitle lowercases and collapses whitespace so spacing variants of
// the same headline hash identically.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// PostedRecord is the durable trace of a published article, used to prevent
// re-posting across process restarts.
type PostedRecord struct {
	Hash     string
	Title    string
	Source   string
	URL      string
	PostedAt time.Time
	Category Category
	Score    int
}

// FetchResult carries one source's contribution to the candidate pool.
// A failed source yields Err and an empty Articles slice; it never hides
// the results of other sources.
type FetchResult struct {
	Source   string
	Articles []Article
	Err      error
}
