package process

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveDotSegments

// Normalize canonicalizes user supplied URLs (site roots, sitemap URLs and
// seed lines). Query order is left alone so seeds match their sitemap locs.
func Normalize(rawURL string) (string, error) {
	return purell.NormalizeURLString(strings.TrimSpace(rawURL), normalizeFlags)
}

// NormalizeRoot normalizes a site root and drops any trailing slash so that
// root + "/path" forms a valid URL.
func NormalizeRoot(rawURL string) (string, error) {
	n, err := Normalize(rawURL)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(n, "/"), nil
}

// SiteDomain returns the host of siteRoot without a leading "www.".
func SiteDomain(siteRoot string) (string, error) {
	u, err := url.Parse(siteRoot)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(u.Host, "www."), nil
}

// DefaultStripPrefixes returns the absolute prefixes that make internal
// links root-relative: https://<domain> then https://www.<domain>.
func DefaultStripPrefixes(siteRoot string) ([]string, error) {
	domain, err := SiteDomain(siteRoot)
	if err != nil {
		return nil, err
	}
	return []string{
		"https://" + domain,
		"https://www." + domain,
	}, nil
}
