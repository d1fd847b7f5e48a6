// Package links extracts candidate links with their surrounding context
// from a source page. The context (anchor text, title attribute and the
// URL itself) is what the lexical and embedding stages score against.
package links

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/webrag/webrag/models"
)

// DocumentGetter fetches a URL as a parsed HTML document.
type DocumentGetter interface {
	Document(ctx context.Context, rawURL string) (*goquery.Document, error)
}

type Extractor struct {
	fetcher DocumentGetter
	logger  *slog.Logger
}

func NewExtractor(fetcher DocumentGetter, logger *slog.Logger) *Extractor {
	return &Extractor{fetcher: fetcher, logger: logger}
}

// Extract fetches a page and returns up to maxLinks candidate links. A
// fetch failure yields an empty list, not an error escalation: one bad
// source page must not break the whole pipeline.
func (e *Extractor) Extract(ctx context.Context, pageURL string, maxLinks int) []models.CandidateLink {
	e.logger.Info("extracting links", "url", pageURL, "max_links", maxLinks)

	doc, err := e.fetcher.Document(ctx, pageURL)
	if err != nil {
		e.logger.Error("failed to fetch source page", "url", pageURL, "error", err)
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		e.logger.Error("invalid source page URL", "url", pageURL, "error", err)
		return nil
	}

	candidates := FromDocument(base, doc, maxLinks)
	e.logger.Info("extracted links", "url", pageURL, "count", len(candidates))
	return candidates
}

// FromDocument walks a parsed document and collects candidate links:
// absolute http(s) URLs joined against base, deduplicated by exact URL in
// document order, capped at maxLinks.
func FromDocument(base *url.URL, doc *goquery.Document, maxLinks int) []models.CandidateLink {
	var candidates []models.CandidateLink
	seen := make(map[string]struct{})

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		// Cap check before the append so maxLinks <= 0 collects nothing.
		if len(candidates) >= maxLinks {
			return false
		}

		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}

		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}

		absolute := resolved.String()
		if _, ok := seen[absolute]; ok {
			return true
		}
		seen[absolute] = struct{}{}

		text := strings.TrimSpace(s.Text())
		title := strings.TrimSpace(s.AttrOr("title", ""))
		context := strings.TrimSpace(strings.Join([]string{text, title, absolute}, " "))

		candidates = append(candidates, models.CandidateLink{URL: absolute, Context: context})
		return true
	})

	return candidates
}
