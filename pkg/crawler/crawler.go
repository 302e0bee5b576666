package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devraulu/sitegraph/pkg/config"
	"github.com/devraulu/sitegraph/pkg/fetch"
	"github.com/devraulu/sitegraph/pkg/frontier"
	"github.com/devraulu/sitegraph/pkg/graph"
	"github.com/devraulu/sitegraph/pkg/process"
	"github.com/devraulu/sitegraph/pkg/sitemap"
	"github.com/devraulu/sitegraph/pkg/storage"
)

// Crawler resolves the site's sitemap, visits every listed page in order and
// builds the hierarchy and sequence trees.
type Crawler struct {
	cfg     *config.Config
	fetcher fetch.Fetcher
	store   storage.Storage
	Stats   Stats
}

// New returns a crawler. s may be nil, in which case runs are not saved.
func New(cfg *config.Config, f fetch.Fetcher, s storage.Storage) *Crawler {
	return &Crawler{
		cfg:     cfg,
		fetcher: f,
		store:   s,
	}
}

func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	c.Stats = Stats{StartTime: time.Now()}

	root, err := process.NormalizeRoot(c.cfg.Site.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid site root %q: %w", c.cfg.Site.Root, err)
	}

	records := sitemap.NewRecordStore()
	sitemaps, err := c.collect(ctx, root, records)
	if err != nil {
		return nil, err
	}
	c.Stats.Sitemaps = len(sitemaps)
	c.Stats.Records = records.Len()

	extractor, err := c.newExtractor(root)
	if err != nil {
		return nil, err
	}

	builder := c.newBuilder(root)
	if err := c.coordinator(ctx, frontier.FromRecords(records), builder, extractor); err != nil {
		c.Stats.Stats = builder.Stats
		return nil, err
	}

	c.Stats.Stats = builder.Stats
	c.Stats.EndTime = time.Now()

	res := &Result{
		SiteRoot:  root,
		Sitemaps:  sitemaps,
		Records:   records,
		Hierarchy: builder.Hierarchy(),
		Sequence:  builder.Sequence(),
		Stats:     c.Stats,
	}

	if c.store != nil {
		res.RunID = uuid.New()
		err := c.store.SaveRun(ctx, storage.Run{
			ID:         res.RunID,
			SiteRoot:   root,
			Sitemap:    strings.Join(sitemaps, ","),
			StartedAt:  c.Stats.StartTime,
			FinishedAt: c.Stats.EndTime,
			Records:    records.Rows(),
			Hierarchy:  res.Hierarchy,
			Sequence:   res.Sequence,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
	}

	slog.Info("crawl complete",
		slog.Int("sitemaps", c.Stats.Sitemaps),
		slog.Int("records", c.Stats.Records),
		slog.Int("processed", c.Stats.PagesProcessed),
		slog.Int("errored", c.Stats.PagesErrored),
		slog.Int("skipped", c.Stats.PagesSkipped),
		slog.Int("back_links", c.Stats.BackLinks),
		slog.Int("forward_links", c.Stats.ForwardLinks),
		slog.Int("cycles", c.Stats.Cycles),
		slog.Duration("elapsed", c.Stats.Elapsed()),
		slog.Float64("pages_per_sec", c.Stats.PagesPerSecond()),
	)

	return res, nil
}

// collect fills records from the seeds file, the robots.txt sitemaps or the
// configured sitemap, in that order of preference, and returns the sources
// it used.
func (c *Crawler) collect(ctx context.Context, root string, records *sitemap.RecordStore) ([]string, error) {
	if path := c.cfg.Site.SeedsFile; path != "" {
		if err := frontier.LoadSeeds(path, records); err != nil {
			return nil, fmt.Errorf("failed to load seeds: %w", err)
		}
		return []string{path}, nil
	}

	var sitemaps []string
	if c.cfg.Sitemap.Discover && c.cfg.Site.Sitemap == "" {
		found, err := process.DiscoverSitemaps(ctx, c.fetcher, root)
		if err != nil {
			return nil, fmt.Errorf("failed to discover sitemaps: %w", err)
		}
		sitemaps = found
	} else {
		sitemaps = []string{c.cfg.SitemapURL()}
	}

	resolver := sitemap.NewResolver(c.fetcher, sitemap.WithMaxIndexDepth(c.cfg.Sitemap.MaxIndexDepth))
	for _, sm := range sitemaps {
		slog.Info("resolving sitemap", slog.String("url", sm))
		if err := resolver.ResolveInto(ctx, sm, records); err != nil {
			return nil, fmt.Errorf("failed to resolve sitemap %s: %w", sm, err)
		}
	}
	return sitemaps, nil
}

func (c *Crawler) newExtractor(root string) (*process.Extractor, error) {
	strip := c.cfg.Extract.StripPrefixes
	if len(strip) == 0 {
		var err error
		strip, err = process.DefaultStripPrefixes(root)
		if err != nil {
			return nil, fmt.Errorf("failed to build strip prefixes: %w", err)
		}
	}
	return process.NewExtractor(c.fetcher,
		process.WithStripPrefixes(strip...),
		process.WithExcludePrefixes(c.cfg.Extract.ExcludePrefixes...),
	), nil
}

func (c *Crawler) newBuilder(root string) *graph.Builder {
	label := c.cfg.Site.RootLabel
	if label == "" {
		label = root
	}
	return graph.NewBuilder(root,
		graph.WithRootLabel(label),
		graph.WithBackMarker(c.cfg.Graph.BackMarker),
		graph.WithForwardMarker(c.cfg.Graph.ForwardMarker),
		graph.WithContinueOnError(c.cfg.Graph.ContinueOnError),
	)
}

// coordinator pops candidates in order and hands each one to the builder.
func (c *Crawler) coordinator(ctx context.Context, f *frontier.Frontier, b *graph.Builder, e *process.Extractor) error {
	total := f.Len()
	for candidate := f.Pop(); candidate != nil; candidate = f.Pop() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.visit(ctx, b, e, *candidate, total-f.Len(), total); err != nil {
			return err
		}
	}
	slog.Info("frontier empty. mission complete.")
	return nil
}
