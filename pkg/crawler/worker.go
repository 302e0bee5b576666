package crawler

import (
	"context"
	"log/slog"

	"github.com/devraulu/sitegraph/pkg/frontier"
	"github.com/devraulu/sitegraph/pkg/graph"
	"github.com/devraulu/sitegraph/pkg/process"
)

func (c *Crawler) visit(ctx context.Context, b *graph.Builder, e *process.Extractor, job frontier.Candidate, n, total int) error {
	slog.Debug("visiting", slog.String("url", job.URL), slog.String("sitemap", job.Sitemap))

	extract := func(ctx context.Context, pageURL string) ([]process.LinkElement, error) {
		links, err := e.Extract(ctx, pageURL)
		if err != nil {
			slog.Error("crawl failed", slog.String("url", pageURL), slog.Any("err", err))
			return nil, err
		}

		c.Stats.Stats = b.Stats
		slog.Info("crawl success",
			slog.String("url", pageURL),
			slog.Int("outlinks", len(links)),
			slog.Int("progress", n),
			slog.Int("total", total),
			slog.Float64("pages_per_sec", c.Stats.PagesPerSecond()),
		)
		return links, nil
	}

	return b.Visit(ctx, job.URL, extract)
}
