package feeds

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsSentry/internal/ports"
)

const (
	maxContentLen = 2000
	maxParagraphs = 7
)

// contentSelectors are tried in order against common article layouts.
var contentSelectors = []string{
	"article",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
	".story-body",
	".article-body",
}

var whitespaceExpr = regexp.MustCompile(`\s+`)

// Extractor pulls readable text out of an article page for the relevance
// and analysis prompts.
type Extractor struct {
	client *http.Client
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// NewExtractor wires an HTTP client; a nil client gets a sane default.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Extractor{client: client}
}

// Extract fetches the page and returns up to maxContentLen characters of
// paragraph text from the main content area.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside, iframe, noscript").Remove()

	content := ""
	for _, selector := range contentSelectors {
		area := doc.Find(selector).First()
		if area.Length() == 0 {
			continue
		}
		if text := collectParagraphs(area, maxParagraphs); text != "" {
			content = text
			break
		}
	}
	if content == "" {
		content = collectParagraphs(doc.Selection, 5)
	}

	content = strings.TrimSpace(whitespaceExpr.ReplaceAllString(content, " "))
	if len(content) > maxContentLen {
		content = content[:maxContentLen] + "..."
	}
	return content, nil
}

func collectParagraphs(area *goquery.Selection, limit int) string {
	var parts []string
	area.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
		return len(parts) < limit
	})
	return strings.Join(parts, " ")
}
