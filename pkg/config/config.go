package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	AppName           = "sitegraph"
	DefaultConfigFile = "sitegraph.toml"
	DefaultSiteRoot   = "https://www.wenvision.com"
	DefaultRootLabel  = "WE ENVISION"
	envPrefix         = "SITEGRAPH_"
)

var (
	ErrNoSiteRoot         = errors.New("site root is required")
	ErrInvalidSiteRoot    = errors.New("site root must be an absolute http(s) URL without a trailing slash")
	ErrNoMarkers          = errors.New("back and forward markers must not both be empty")
	ErrInvalidIndexDepth  = errors.New("max_index_depth must be at least 1")
	ErrInvalidFormat      = errors.New("output format must be text or markdown")
	ErrInvalidDriver      = errors.New("storage driver must be postgres or sqlite")
	ErrInvalidTimeout     = errors.New("http timeout must be a duration such as 30s")
	ErrUnsupportedFileExt = errors.New("config file must be .toml, .yaml or .yml")
)

type Config struct {
	Site    SiteConfig    `toml:"site" yaml:"site"`
	Sitemap SitemapConfig `toml:"sitemap" yaml:"sitemap"`
	Extract ExtractConfig `toml:"extract" yaml:"extract"`
	Graph   GraphConfig   `toml:"graph" yaml:"graph"`
	HTTP    HTTPConfig    `toml:"http" yaml:"http"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

type SiteConfig struct {
	Root      string `toml:"root" yaml:"root"`
	Sitemap   string `toml:"sitemap" yaml:"sitemap"`
	RootLabel string `toml:"root_label" yaml:"root_label"`
	SeedsFile string `toml:"seeds_file" yaml:"seeds_file"`
}

type SitemapConfig struct {
	MaxIndexDepth int  `toml:"max_index_depth" yaml:"max_index_depth"`
	Discover      bool `toml:"discover" yaml:"discover"`
}

type ExtractConfig struct {
	// StripPrefixes defaults to https://<domain> and https://www.<domain>
	// when empty.
	StripPrefixes   []string `toml:"strip_prefixes" yaml:"strip_prefixes"`
	ExcludePrefixes []string `toml:"exclude_prefixes" yaml:"exclude_prefixes"`
}

type GraphConfig struct {
	BackMarker      string `toml:"back_marker" yaml:"back_marker"`
	ForwardMarker   string `toml:"forward_marker" yaml:"forward_marker"`
	ContinueOnError bool   `toml:"continue_on_error" yaml:"continue_on_error"`
}

type HTTPConfig struct {
	UserAgent string `toml:"user_agent" yaml:"user_agent"`
	Timeout   string `toml:"timeout" yaml:"timeout"`
}

type OutputConfig struct {
	Format string `toml:"format" yaml:"format"`
	Head   int    `toml:"head" yaml:"head"`
	Path   string `toml:"path" yaml:"path"`
}

type StorageConfig struct {
	Driver string `toml:"driver" yaml:"driver"`
	DSN    string `toml:"dsn" yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns a Config populated with the values used when no file,
// environment variable or flag overrides them.
func Default() *Config {
	var cfg Config
	cfg.Site.Root = DefaultSiteRoot
	cfg.Site.RootLabel = DefaultRootLabel
	cfg.Sitemap.MaxIndexDepth = 2
	cfg.Extract.ExcludePrefixes = []string{"/author", "/signup"}
	cfg.Graph.BackMarker = "< "
	cfg.Graph.ForwardMarker = " >"
	cfg.Output.Format = "text"
	cfg.Output.Head = 5
	cfg.Storage.Driver = "postgres"
	cfg.Logging.Format = "text"
	cfg.Logging.Level = "info"
	return &cfg
}

// Load reads path on top of the defaults. An empty path skips the file and
// only applies the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			err = toml.Unmarshal(data, cfg)
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		default:
			return nil, ErrUnsupportedFileExt
		}
		if err != nil {
			return nil, err
		}
	}

	// a missing .env is the common case
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

// FindConfigFile returns explicit when set, otherwise the first of
// ./sitegraph.toml and $XDG_CONFIG_HOME/sitegraph/config.toml that exists.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	candidates := []string{
		DefaultConfigFile,
		filepath.Join(xdg.ConfigHome, AppName, "config.toml"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}

	setString("SITE_ROOT", &c.Site.Root)
	setString("SITEMAP", &c.Site.Sitemap)
	setString("ROOT_LABEL", &c.Site.RootLabel)
	setString("USER_AGENT", &c.HTTP.UserAgent)
	setString("HTTP_TIMEOUT", &c.HTTP.Timeout)
	setString("STORAGE_DRIVER", &c.Storage.Driver)
	setString("DSN", &c.Storage.DSN)
	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FORMAT", &c.Logging.Format)

	if v, ok := os.LookupEnv(envPrefix + "CONTINUE_ON_ERROR"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Graph.ContinueOnError = b
		}
	}
}

// SitemapURL is the configured sitemap or <root>/sitemap.xml.
func (c *Config) SitemapURL() string {
	if c.Site.Sitemap != "" {
		return c.Site.Sitemap
	}
	return c.Site.Root + "/sitemap.xml"
}

func (c *HTTPConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0 // rejected by Validate
	}
	return d
}

func (c *Config) Validate() error {
	if c.Site.Root == "" {
		return ErrNoSiteRoot
	}
	if !(strings.HasPrefix(c.Site.Root, "http://") || strings.HasPrefix(c.Site.Root, "https://")) ||
		strings.HasSuffix(c.Site.Root, "/") {
		return ErrInvalidSiteRoot
	}
	if c.Graph.BackMarker == "" && c.Graph.ForwardMarker == "" {
		return ErrNoMarkers
	}
	if c.Sitemap.MaxIndexDepth < 1 {
		return ErrInvalidIndexDepth
	}
	if c.HTTP.Timeout != "" {
		if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, c.HTTP.Timeout)
		}
	}
	switch c.Output.Format {
	case "text", "markdown":
	default:
		return ErrInvalidFormat
	}
	if c.Storage.DSN != "" {
		switch c.Storage.Driver {
		case "postgres", "sqlite":
		default:
			return ErrInvalidDriver
		}
	}
	return nil
}
