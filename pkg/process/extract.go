package process

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/devraulu/sitegraph/pkg/fetch"
)

// LinkElement is an internal anchor: its href with the site prefixes
// stripped, and its text exactly as it appears in the page.
type LinkElement struct {
	Href string
	Text string
}

type Extractor struct {
	fetcher         fetch.Fetcher
	stripPrefixes   []string
	excludePrefixes []string
}

type ExtractorOption func(*Extractor)

func WithStripPrefixes(prefixes ...string) ExtractorOption {
	return func(e *Extractor) {
		e.stripPrefixes = prefixes
	}
}

func WithExcludePrefixes(prefixes ...string) ExtractorOption {
	return func(e *Extractor) {
		e.excludePrefixes = prefixes
	}
}

func NewExtractor(f fetch.Fetcher, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		fetcher:         f,
		excludePrefixes: []string{"/author", "/signup"},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches pageURL and returns its internal links in document order.
func (e *Extractor) Extract(ctx context.Context, pageURL string) ([]LinkElement, error) {
	doc, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	body, err := doc.Reader()
	if err != nil {
		return nil, &fetch.FetchError{URL: pageURL, StatusCode: doc.StatusCode, Err: err}
	}

	links, err := e.ExtractLinks(body)
	if err != nil {
		return nil, &fetch.FetchError{URL: pageURL, StatusCode: doc.StatusCode, Err: err}
	}

	slog.Debug("extracted links", slog.String("url", pageURL), slog.Int("links", len(links)))
	return links, nil
}

// ExtractLinks parses an HTML body and returns the anchors that survive
// FilterHref.
func (e *Extractor) ExtractLinks(body io.Reader) ([]LinkElement, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	links := []LinkElement{}
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}

		href = e.strip(href)
		if !e.FilterHref(href) {
			return
		}

		links = append(links, LinkElement{
			Href: href,
			Text: s.Text(),
		})
	})

	return links, nil
}

func (e *Extractor) strip(href string) string {
	for _, p := range e.stripPrefixes {
		href = strings.TrimPrefix(href, p)
	}
	return href
}

// FilterHref reports whether a stripped href is a content page of the site:
// root-relative, longer than "/", and not under an excluded prefix.
func (e *Extractor) FilterHref(href string) bool {
	if !strings.HasPrefix(href, "/") || len(href) <= 1 {
		return false
	}
	for _, p := range e.excludePrefixes {
		if strings.HasPrefix(href, p) {
			return false
		}
	}
	return true
}
