// Package main provides the sitegraph CLI.
//
// sitegraph reads a site's sitemap, visits every listed page and rebuilds
// two link graphs from breadcrumb-style anchors: a hierarchy from "< " back
// links and a reading sequence from " >" forward links.
//
// Usage:
//
//	sitegraph crawl [sitemap-url]
//	sitegraph version
package main

func main() {
	Execute()
}
