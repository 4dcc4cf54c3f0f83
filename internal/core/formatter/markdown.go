// Package formatter renders tool payloads as markdown text.
//
// Every function here is pure: no I/O, and the same input always yields
// the same output. Input order is preserved, never re-sorted.
package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

// EmptyResults is returned for a search with no hits.
const EmptyResults = "No results found."

// ErrorPrefix starts every failure message returned to the client.
const ErrorPrefix = "An error occurred: "

// ErrUnsupportedPayload indicates Render was given a payload it cannot format.
var ErrUnsupportedPayload = errors.New("formatter: unsupported payload")

// Render formats any tool payload.
func Render(p domain.Payload) (string, error) {
	switch v := p.(type) {
	case domain.SearchResults:
		return SearchResults(v), nil
	case *domain.ScrapedPage:
		if v != nil {
			return ScrapedPage(v), nil
		}
	case *domain.CrawlJob:
		if v != nil {
			return CrawlJob(v), nil
		}
	case *domain.CrawlStatus:
		if v != nil {
			return CrawlStatus(v), nil
		}
	case *domain.SiteMap:
		if v != nil {
			return SiteMap(v), nil
		}
	case *domain.Extraction:
		if v != nil {
			return Extraction(v)
		}
	case nil:
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedPayload, p)
	}
	return "", fmt.Errorf("%w: empty response", domain.ErrUpstream)
}

// SearchResults renders results as a markdown bullet list.
func SearchResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return EmptyResults
	}

	var b strings.Builder
	b.WriteString("### Search Results:\n")
	for _, r := range results {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "No title"
		}

		b.WriteString("\n")
		fmt.Fprintf(&b, "- **[%s](%s)**\n", escapeLinkText(title), r.URL)
		if r.PublishedDate != "" {
			fmt.Fprintf(&b, "  *Published: %s*\n", r.PublishedDate)
		}
		if summary := strings.TrimSpace(r.Summary); summary != "" {
			for _, line := range strings.Split(summary, "\n") {
				b.WriteString("  > ")
				b.WriteString(strings.TrimRight(line, " \t\r"))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// ScrapedPage renders a page with a metadata header above its content.
func ScrapedPage(p *domain.ScrapedPage) string {
	title := orDefault(p.Metadata.Title, "Scraped Content")
	source := orDefault(p.Metadata.SourceURL, "Unknown")

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if p.Metadata.Description != "" {
		fmt.Fprintf(&b, "*%s*\n\n", p.Metadata.Description)
	}
	fmt.Fprintf(&b, "**Source URL:** %s\n\n", source)
	b.WriteString("---\n\n")
	b.WriteString(p.Markdown)
	return b.String()
}

// CrawlJob renders the acknowledgement of a started crawl.
func CrawlJob(j *domain.CrawlJob) string {
	var b strings.Builder
	b.WriteString("# Crawl Job Started\n\n")
	fmt.Fprintf(&b, "**Job ID:** %s\n\n", j.ID)
	b.WriteString("To check the status of this crawl, use the `check_crawl_status` tool with this Job ID.")
	return b.String()
}

// CrawlStatus renders crawl progress and the pages fetched so far.
func CrawlStatus(s *domain.CrawlStatus) string {
	var b strings.Builder
	b.WriteString("# Crawl Status\n\n")
	fmt.Fprintf(&b, "**Current Status:** %s\n", orDefault(s.Status, "Unknown"))
	fmt.Fprintf(&b, "**Total Pages:** %d\n", s.Total)
	fmt.Fprintf(&b, "**Completed Pages:** %d\n", s.Completed)
	fmt.Fprintf(&b, "**Credits Used:** %d\n", s.CreditsUsed)
	if s.ExpiresAt != "" {
		fmt.Fprintf(&b, "**Expires At:** %s\n", s.ExpiresAt)
	}

	if len(s.Pages) > 0 {
		fmt.Fprintf(&b, "\n## Crawled Pages: %d\n\n", len(s.Pages))
		for i, page := range s.Pages {
			fmt.Fprintf(&b, "%d. **%s**\n", i+1, orDefault(page.Title, "Unknown Title"))
			fmt.Fprintf(&b, "   URL: %s\n", orDefault(page.SourceURL, "Unknown URL"))
		}
	}
	return b.String()
}

// SiteMap renders discovered links as a numbered list.
func SiteMap(m *domain.SiteMap) string {
	var b strings.Builder
	b.WriteString("# Website Map Results\n\n")
	fmt.Fprintf(&b, "Found %d links:\n\n", len(m.Links))
	for i, link := range m.Links {
		fmt.Fprintf(&b, "%d. %s\n", i+1, link)
	}
	return b.String()
}

// Extraction renders extracted data as an indented JSON code block.
func Extraction(e *domain.Extraction) (string, error) {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding extracted data: %w", err)
	}
	return "# Extracted Structured Data\n\n```json\n" + string(encoded) + "\n```", nil
}

// Error renders err as the message returned to the client.
func Error(err error) string {
	return ErrorPrefix + err.Error()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

var linkTextEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)

func escapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}
