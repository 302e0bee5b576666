package graph

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/devraulu/sitegraph/pkg/process"
)

// ExtractFunc returns the filtered internal links of a page.
type ExtractFunc func(ctx context.Context, pageURL string) ([]process.LinkElement, error)

type Stats struct {
	PagesProcessed int
	PagesSkipped   int
	PagesErrored   int
	LinksSeen      int
	BackLinks      int
	ForwardLinks   int
	Cycles         int
}

// Builder grows a hierarchy tree from "back" links and a sequence tree from
// "forward" links, one page at a time.
type Builder struct {
	siteRoot        string
	backMarker      string
	forwardMarker   string
	continueOnError bool

	hierarchy *Tree
	sequence  *Tree
	Stats     Stats
}

type Option func(*Builder)

func WithRootLabel(label string) Option {
	return func(b *Builder) {
		b.hierarchy = NewTree(label)
		b.sequence = NewTree(label)
	}
}

// WithBackMarker sets the anchor text prefix that makes the current page a
// child of the link target. An empty marker disables the rule.
func WithBackMarker(marker string) Option {
	return func(b *Builder) {
		b.backMarker = marker
	}
}

// WithForwardMarker sets the anchor text suffix that records the link target
// as the next page. An empty marker disables the rule.
func WithForwardMarker(marker string) Option {
	return func(b *Builder) {
		b.forwardMarker = marker
	}
}

// WithContinueOnError keeps crawling past pages whose extraction fails. The
// failed page keeps its nodes but gets no links.
func WithContinueOnError(v bool) Option {
	return func(b *Builder) {
		b.continueOnError = v
	}
}

// NewBuilder returns a builder for the site at siteRoot, given without a
// trailing slash. Link hrefs are appended to it to name their targets.
func NewBuilder(siteRoot string, opts ...Option) *Builder {
	b := &Builder{
		siteRoot:      siteRoot,
		backMarker:    "< ",
		forwardMarker: " >",
		hierarchy:     NewTree(siteRoot),
		sequence:      NewTree(siteRoot),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Hierarchy() *Tree {
	return b.hierarchy
}

func (b *Builder) Sequence() *Tree {
	return b.sequence
}

// Process visits urls in order, skipping the site root page, and returns the
// hierarchy and sequence trees. Unless continue-on-error is set, the first
// extraction error aborts the run and no trees are returned.
func (b *Builder) Process(ctx context.Context, urls []string, extract ExtractFunc) (*Tree, *Tree, error) {
	for _, u := range urls {
		if err := b.Visit(ctx, u, extract); err != nil {
			return nil, nil, err
		}
	}
	return b.hierarchy, b.sequence, nil
}

// Visit processes a single page.
func (b *Builder) Visit(ctx context.Context, currentURL string, extract ExtractFunc) error {
	if currentURL == b.siteRoot+"/" {
		b.Stats.PagesSkipped++
		return nil
	}

	slog.Info("processing page", slog.String("url", currentURL))

	hCurrent := b.hierarchy.FindOrCreate(currentURL)
	sCurrent := b.sequence.Add(b.sequence.Root(), currentURL)

	links, err := extract(ctx, currentURL)
	if err != nil {
		if !b.continueOnError || ctx.Err() != nil {
			return err
		}
		b.Stats.PagesErrored++
		slog.Error("extract failed, continuing", slog.String("url", currentURL), slog.Any("err", err))
		return nil
	}

	slog.Info("page links", slog.String("url", currentURL), slog.Int("links", len(links)))

	for _, link := range links {
		b.Stats.LinksSeen++
		targetURL := b.siteRoot + link.Href
		target := b.hierarchy.FindOrCreate(targetURL)

		if b.isBack(link.Text) {
			b.Stats.BackLinks++
			if err := b.hierarchy.Reparent(hCurrent, target); err != nil {
				if !errors.Is(err, ErrCycle) {
					return err
				}
				b.Stats.Cycles++
				slog.Warn("back link would create a cycle, keeping current parent",
					slog.String("url", currentURL),
					slog.String("target", targetURL),
				)
			}
		}

		if b.isForward(link.Text) {
			b.Stats.ForwardLinks++
			b.sequence.Add(sCurrent, targetURL)
		}
	}

	b.Stats.PagesProcessed++
	return nil
}

func (b *Builder) isBack(text string) bool {
	return b.backMarker != "" && strings.HasPrefix(text, b.backMarker)
}

func (b *Builder) isForward(text string) bool {
	return b.forwardMarker != "" && strings.HasSuffix(text, b.forwardMarker)
}
