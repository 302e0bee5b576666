package frontier

import (
	"bufio"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/devraulu/sitegraph/pkg/process"
	"github.com/devraulu/sitegraph/pkg/sitemap"
)

var (
	ErrNoSeeds = errors.New("no seeds loaded")
)

// LoadSeeds reads one page URL per line into store, as if they had been
// listed by a sitemap named after the file. Blank lines and lines starting
// with # are ignored.
func LoadSeeds(path string, store *sitemap.RecordStore) error {
	slog.Info("loading seeds", "path", path)
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	before := store.Len()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		normalized, err := process.Normalize(line)
		if err != nil {
			slog.Error("couldn't normalize seed", slog.String("seed", line), slog.Any("err", err))
			continue
		}
		store.Append(sitemap.Record{
			Loc:         normalized,
			Domain:      hostOf(normalized),
			SitemapName: path,
		})
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	loaded := store.Len() - before
	if loaded == 0 {
		return ErrNoSeeds
	}

	slog.Info("loaded seeds", "count", loaded)
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
