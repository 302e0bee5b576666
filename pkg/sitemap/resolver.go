package sitemap

import (
	"context"
	"log/slog"

	"github.com/devraulu/sitegraph/pkg/fetch"
)

// Resolver flattens a root sitemap into its page records.
type Resolver struct {
	fetcher       fetch.Fetcher
	maxIndexDepth int
}

type Option func(*Resolver)

// WithMaxIndexDepth bounds how many levels of sitemap indexes are expanded.
// A depth of 1 expands only the root index; nested indexes then contribute
// no records.
func WithMaxIndexDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxIndexDepth = depth
		}
	}
}

func NewResolver(f fetch.Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:       f,
		maxIndexDepth: 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns every record reachable from rootURL. An index with N
// children costs N+1 fetches; a urlset root costs one.
func (r *Resolver) Resolve(ctx context.Context, rootURL string) ([]Record, error) {
	store := NewRecordStore()
	if err := r.ResolveInto(ctx, rootURL, store); err != nil {
		return nil, err
	}
	return store.Rows(), nil
}

// ResolveInto appends the records reachable from rootURL to store.
func (r *Resolver) ResolveInto(ctx context.Context, rootURL string, store *RecordStore) error {
	doc, err := r.load(ctx, rootURL)
	if err != nil {
		return err
	}

	slog.Info("resolved sitemap", slog.String("url", rootURL), slog.String("type", doc.typ.String()))

	switch doc.typ {
	case TypeIndex:
		return r.expand(ctx, doc, 1, store)
	case TypeURLSet:
		store.Append(doc.records(rootURL)...)
		return nil
	default:
		slog.Warn("skipping sitemap", slog.String("url", rootURL), slog.Any("err", ErrUnknownSitemapType))
		return nil
	}
}

func (r *Resolver) expand(ctx context.Context, index *document, depth int, store *RecordStore) error {
	slog.Info("expanding sitemap index", slog.Int("children", len(index.sitemaps)), slog.Int("depth", depth))

	for _, child := range index.sitemaps {
		doc, err := r.load(ctx, child)
		if err != nil {
			return err
		}

		if doc.typ == TypeIndex {
			if depth < r.maxIndexDepth {
				if err := r.expand(ctx, doc, depth+1, store); err != nil {
					return err
				}
				continue
			}
			slog.Warn("nested sitemap index beyond max depth",
				slog.String("url", child),
				slog.Int("max_index_depth", r.maxIndexDepth),
			)
		}

		if doc.typ == TypeUnknown {
			slog.Warn("child sitemap has no sitemap root", slog.String("url", child), slog.Any("err", ErrUnknownSitemapType))
		}

		// children are read as urlsets whatever their root element
		records := doc.records(child)
		slog.Debug("child sitemap", slog.String("url", child), slog.Int("records", len(records)))
		store.Append(records...)
	}
	return nil
}

func (r *Resolver) load(ctx context.Context, url string) (*document, error) {
	raw, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := parse(raw.Body)
	if err != nil {
		return nil, &fetch.FetchError{URL: url, StatusCode: raw.StatusCode, Err: err}
	}
	return doc, nil
}
