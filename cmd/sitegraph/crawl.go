package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devraulu/sitegraph/pkg/config"
	"github.com/devraulu/sitegraph/pkg/crawler"
	"github.com/devraulu/sitegraph/pkg/fetch"
	"github.com/devraulu/sitegraph/pkg/logger"
	"github.com/devraulu/sitegraph/pkg/report"
	"github.com/devraulu/sitegraph/pkg/storage"
)

func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [sitemap-url]",
		Short: "Crawl the pages of a sitemap and print the link graph",
		Long: `Crawl resolves the sitemap, visits its pages in sitemap order and prints the
PARENTS and SISTERS trees followed by the sitemap record table.

Examples:
  # Default site (https://www.wenvision.com/sitemap.xml)
  sitegraph crawl

  # Any sitemap; the site root is taken from the sitemap URL
  sitegraph crawl https://www.example.com/sitemap_index.xml

  # Find sitemaps through robots.txt and keep going past broken pages
  sitegraph crawl --site https://www.example.com --discover --continue-on-error

  # Markdown report saved to a file, run stored in SQLite
  sitegraph crawl --format markdown -o report.md --driver sqlite --dsn sitegraph.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file (default: ./sitegraph.toml or $XDG_CONFIG_HOME/sitegraph/config.toml)")

	cmd.Flags().String("site", "", "Site root, without trailing slash")
	cmd.Flags().String("sitemap", "", "Sitemap URL (default: <site>/sitemap.xml)")
	cmd.Flags().String("root-label", "", "Label of the root node of both trees")
	cmd.Flags().Bool("discover", false, "Read sitemap locations from robots.txt")
	cmd.Flags().String("seeds", "", "File of page URLs to crawl instead of a sitemap")
	cmd.Flags().Int("max-index-depth", 0, "Levels of nested sitemap indexes to expand")

	cmd.Flags().String("back-marker", "", "Anchor text prefix of back links")
	cmd.Flags().String("forward-marker", "", "Anchor text suffix of forward links")
	cmd.Flags().Bool("continue-on-error", false, "Keep crawling when a page cannot be fetched")

	cmd.Flags().String("user-agent", "", "User-Agent header sent with every request")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (0 means none)")

	cmd.Flags().StringP("format", "f", "", "Report format: text or markdown")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Int("head", 0, "Number of sitemap records shown in the report")

	cmd.Flags().String("driver", "", "Storage driver: postgres or sqlite")
	cmd.Flags().String("dsn", "", "Save the run to this database")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) (err error) {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger.InitLogger(cfg)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	appSignal := make(chan os.Signal, 1)
	signal.Notify(appSignal, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(appSignal)

	go func() {
		select {
		case s := <-appSignal:
			slog.Info("received system signal", slog.String("signal", s.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	var store storage.Storage
	if cfg.Storage.DSN != "" {
		s, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	fetcher := fetch.NewHTTPFetcher(cfg.HTTP.UserAgent, cfg.HTTP.GetTimeout())
	res, err := crawler.New(cfg, fetcher, store).Run(ctx)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), cfg.Output.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	w, err := report.New(cfg.Output.Format, out, cfg.Output.Head)
	if err != nil {
		return err
	}
	if err := w.Write(res); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.Output.Path != "" {
		slog.Info("report written", slog.String("path", cfg.Output.Path))
	}
	return nil
}

// buildConfig layers flags over the config file and environment.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(config.FindConfigFile(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	setString := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	setBool := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
	setInt := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	setString("site", &cfg.Site.Root)
	setString("sitemap", &cfg.Site.Sitemap)
	setString("root-label", &cfg.Site.RootLabel)
	setBool("discover", &cfg.Sitemap.Discover)
	setString("seeds", &cfg.Site.SeedsFile)
	setInt("max-index-depth", &cfg.Sitemap.MaxIndexDepth)
	setString("back-marker", &cfg.Graph.BackMarker)
	setString("forward-marker", &cfg.Graph.ForwardMarker)
	setBool("continue-on-error", &cfg.Graph.ContinueOnError)
	setString("user-agent", &cfg.HTTP.UserAgent)
	setString("format", &cfg.Output.Format)
	setString("output", &cfg.Output.Path)
	setInt("head", &cfg.Output.Head)
	setString("driver", &cfg.Storage.Driver)
	setString("dsn", &cfg.Storage.DSN)

	if flags.Changed("timeout") {
		d, _ := flags.GetDuration("timeout")
		cfg.HTTP.Timeout = d.String()
	}

	if len(args) == 1 {
		cfg.Site.Sitemap = args[0]
		if !flags.Changed("site") {
			root, err := siteRootOf(args[0])
			if err != nil {
				return nil, err
			}
			cfg.Site.Root = root
		}
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

// siteRootOf returns scheme://host of a sitemap URL.
func siteRootOf(sitemapURL string) (string, error) {
	u, err := url.Parse(sitemapURL)
	if err != nil {
		return "", fmt.Errorf("invalid sitemap url %q: %w", sitemapURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid sitemap url %q: not absolute", sitemapURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
