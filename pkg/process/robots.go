package process

import (
	"context"
	"errors"
	"log/slog"

	"github.com/benjaminestes/robots"
	"github.com/temoto/robotstxt"

	"github.com/devraulu/sitegraph/pkg/fetch"
)

// DiscoverSitemaps returns the Sitemap: entries of the site's robots.txt.
// When robots.txt is missing or lists none, <site>/sitemap.xml is returned.
// Allow and disallow rules are ignored.
func DiscoverSitemaps(ctx context.Context, f fetch.Fetcher, siteURL string) (sitemaps []string, err error) {
	fallback := []string{siteURL + "/sitemap.xml"}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("panic in robots.txt parsing, using default sitemap", slog.String("url", siteURL), slog.Any("panic", r))
			sitemaps, err = fallback, nil
		}
	}()

	robotsURL, err := robots.Locate(siteURL)
	if err != nil {
		return nil, err
	}

	doc, err := f.Fetch(ctx, robotsURL)
	if err != nil {
		var fe *fetch.FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			slog.Warn("no robots.txt, using default sitemap", slog.String("url", robotsURL), slog.Int("status_code", fe.StatusCode))
			return fallback, nil
		}
		return nil, err
	}

	data, err := robotstxt.FromStatusAndBytes(doc.StatusCode, doc.Body)
	if err != nil {
		slog.Warn("failed to parse robots.txt", slog.String("url", robotsURL), slog.Any("err", err))
		return fallback, nil
	}

	if len(data.Sitemaps) == 0 {
		return fallback, nil
	}

	slog.Info("discovered sitemaps", slog.String("url", robotsURL), slog.Int("count", len(data.Sitemaps)))
	return data.Sitemaps, nil
}
