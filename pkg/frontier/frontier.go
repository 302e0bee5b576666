package frontier

import (
	"log/slog"

	"github.com/devraulu/sitegraph/pkg/sitemap"
)

// Candidate is a page waiting to be visited, with the sitemap that listed it.
type Candidate struct {
	URL     string
	Sitemap string
}

// Frontier is the crawl cursor: a FIFO over the flattened record list.
// Order is the crawl order and duplicates are kept, since re-parenting
// depends on both.
type Frontier struct {
	queue []Candidate
	next  int
}

func NewFrontier() *Frontier {
	return &Frontier{}
}

// FromRecords queues every record's location in row order.
func FromRecords(store *sitemap.RecordStore) *Frontier {
	f := NewFrontier()
	store.Each(func(_ int, r sitemap.Record) bool {
		f.Push(r.Loc, r.SitemapName)
		return true
	})
	return f
}

func (f *Frontier) Push(url, sitemapName string) {
	if url == "" {
		slog.Warn("frontier skipping record without loc", slog.String("sitemap", sitemapName))
		return
	}
	f.queue = append(f.queue, Candidate{URL: url, Sitemap: sitemapName})
	slog.Debug("frontier push", slog.String("url", url), slog.Int("queue_len", f.Len()))
}

// Pop returns the next candidate, or nil when the frontier is exhausted.
func (f *Frontier) Pop() *Candidate {
	if f.next >= len(f.queue) {
		return nil
	}
	c := f.queue[f.next]
	f.next++
	return &c
}

// Len is the number of candidates not yet popped.
func (f *Frontier) Len() int {
	return len(f.queue) - f.next
}

// URLs returns the remaining candidates' URLs in order without consuming them.
func (f *Frontier) URLs() []string {
	out := make([]string, 0, f.Len())
	for _, c := range f.queue[f.next:] {
		out = append(out, c.URL)
	}
	return out
}
