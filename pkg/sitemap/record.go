package sitemap

import "net/url"

// Record is one <url> entry of a urlset, tagged with the sitemap it was
// read from.
type Record struct {
	Loc         string
	ChangeFreq  string
	Priority    string
	Domain      string
	SitemapName string
}

func newRecord(e urlEntry, doc *document, sitemapName string) Record {
	r := Record{SitemapName: sitemapName}

	if doc.hasLoc {
		r.Loc = e.loc
		if u, err := url.Parse(e.loc); err == nil {
			r.Domain = u.Host
		}
	}
	if doc.hasChangeFreq {
		r.ChangeFreq = e.changeFreq
	}
	if doc.hasPriority {
		r.Priority = e.priority
	}
	return r
}
