package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "sitegraph.toml", `
[site]
root = "https://www.example.com"

[sitemap]
max_index_depth = 1

[graph]
back_marker = "« "
continue_on_error = true

[extract]
exclude_prefixes = ["/tag"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Site.Root != "https://www.example.com" {
		t.Errorf("unexpected root %q", cfg.Site.Root)
	}
	if cfg.Site.RootLabel != DefaultRootLabel {
		t.Errorf("expected default root label, got %q", cfg.Site.RootLabel)
	}
	if cfg.Sitemap.MaxIndexDepth != 1 {
		t.Errorf("expected max_index_depth 1, got %d", cfg.Sitemap.MaxIndexDepth)
	}
	if cfg.Graph.BackMarker != "« " || cfg.Graph.ForwardMarker != " >" || !cfg.Graph.ContinueOnError {
		t.Errorf("unexpected graph config %+v", cfg.Graph)
	}
	if len(cfg.Extract.ExcludePrefixes) != 1 || cfg.Extract.ExcludePrefixes[0] != "/tag" {
		t.Errorf("unexpected exclude prefixes %v", cfg.Extract.ExcludePrefixes)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "sitegraph.yaml", `
site:
  root: https://docs.example.com
  sitemap: https://docs.example.com/sitemap_index.xml
output:
  format: markdown
  head: 20
storage:
  driver: sqlite
  dsn: runs.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SitemapURL() != "https://docs.example.com/sitemap_index.xml" {
		t.Errorf("unexpected sitemap url %q", cfg.SitemapURL())
	}
	if cfg.Output.Format != "markdown" || cfg.Output.Head != 20 {
		t.Errorf("unexpected output config %+v", cfg.Output)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "runs.db" {
		t.Errorf("unexpected storage config %+v", cfg.Storage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "sitegraph.json", `{}`)
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedFileExt) {
		t.Errorf("expected ErrUnsupportedFileExt, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SITEGRAPH_SITE_ROOT", "https://env.example.com")
	t.Setenv("SITEGRAPH_HTTP_TIMEOUT", "30s")
	t.Setenv("SITEGRAPH_CONTINUE_ON_ERROR", "true")
	t.Setenv("SITEGRAPH_LOG_LEVEL", "debug")

	path := writeFile(t, "sitegraph.toml", "[site]\nroot = \"https://file.example.com\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Site.Root != "https://env.example.com" {
		t.Errorf("expected env root, got %q", cfg.Site.Root)
	}
	if cfg.HTTP.GetTimeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.HTTP.GetTimeout())
	}
	if !cfg.Graph.ContinueOnError {
		t.Error("expected continue_on_error from env")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.SitemapURL() != DefaultSiteRoot+"/sitemap.xml" {
		t.Errorf("unexpected default sitemap %q", cfg.SitemapURL())
	}
	if cfg.HTTP.GetTimeout() != 0 {
		t.Errorf("expected no default timeout, got %s", cfg.HTTP.GetTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty root", func(c *Config) { c.Site.Root = "" }, ErrNoSiteRoot},
		{"trailing slash", func(c *Config) { c.Site.Root = "https://ex.com/" }, ErrInvalidSiteRoot},
		{"relative root", func(c *Config) { c.Site.Root = "ex.com" }, ErrInvalidSiteRoot},
		{"no markers", func(c *Config) { c.Graph.BackMarker, c.Graph.ForwardMarker = "", "" }, ErrNoMarkers},
		{"one marker is enough", func(c *Config) { c.Graph.ForwardMarker = "" }, nil},
		{"zero depth", func(c *Config) { c.Sitemap.MaxIndexDepth = 0 }, ErrInvalidIndexDepth},
		{"bad format", func(c *Config) { c.Output.Format = "html" }, ErrInvalidFormat},
		{"malformed timeout", func(c *Config) { c.HTTP.Timeout = "5 s" }, ErrInvalidTimeout},
		{"timeout", func(c *Config) { c.HTTP.Timeout = "1m30s" }, nil},
		{"bad driver", func(c *Config) { c.Storage.Driver, c.Storage.DSN = "mysql", "x" }, ErrInvalidDriver},
		{"driver unused without dsn", func(c *Config) { c.Storage.Driver = "mysql" }, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
