package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

type Type int

const (
	TypeUnknown Type = iota
	TypeIndex
	TypeURLSet
)

func (t Type) String() string {
	switch t {
	case TypeIndex:
		return "sitemapindex"
	case TypeURLSet:
		return "urlset"
	default:
		return "unknown"
	}
}

var ErrUnknownSitemapType = errors.New("document is neither a sitemapindex nor a urlset")

type urlEntry struct {
	loc        string
	changeFreq string
	priority   string
}

// document is the flattened content of one sitemap file. The has* flags
// record whether the tag appears anywhere in the file.
type document struct {
	typ      Type
	sitemaps []string
	urls     []urlEntry

	hasLoc        bool
	hasChangeFreq bool
	hasPriority   bool
}

func (d *document) records(sitemapName string) []Record {
	out := make([]Record, 0, len(d.urls))
	for _, e := range d.urls {
		out = append(out, newRecord(e, d, sitemapName))
	}
	return out
}

// DetectType reports whether body is a sitemap index or a urlset. A
// sitemapindex element anywhere wins over a urlset element.
func DetectType(body []byte) (Type, error) {
	doc, err := parse(body)
	if err != nil {
		return TypeUnknown, err
	}
	return doc.typ, nil
}

// ParseIndex returns the child sitemap locations of an index in document
// order, taking the first <loc> of every <sitemap> element.
func ParseIndex(body []byte) ([]string, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}
	return doc.sitemaps, nil
}

// ParseURLSet returns one Record per <url> element, tagged with name.
func ParseURLSet(body []byte, name string) ([]Record, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}
	return doc.records(name), nil
}

// parse reads body leniently. A tokenizer error before any sitemapindex or
// urlset element yields an empty TypeUnknown document; after one it is
// returned as is.
func parse(body []byte) (*document, error) {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.Strict = false
	d.CharsetReader = charset.NewReaderLabel

	var (
		doc        document
		seenIndex  bool
		seenURLSet bool
		inSitemap  bool
		sitemapLoc bool
		cur        *urlEntry
	)

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// not a sitemap at all, e.g. an HTML soft 404
			if !seenIndex && !seenURLSet {
				return &document{typ: TypeUnknown}, nil
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sitemapindex":
				seenIndex = true
			case "urlset":
				seenURLSet = true
			case "sitemap":
				inSitemap = true
				sitemapLoc = false
			case "url":
				doc.urls = append(doc.urls, urlEntry{})
				cur = &doc.urls[len(doc.urls)-1]
			case "loc", "changefreq", "priority":
				var text string
				if err := d.DecodeElement(&text, &t); err != nil {
					return nil, err
				}
				text = strings.TrimSpace(text)
				doc.set(t.Name.Local, text, cur)

				if t.Name.Local == "loc" && inSitemap && !sitemapLoc && cur == nil {
					doc.sitemaps = append(doc.sitemaps, text)
					sitemapLoc = true
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "sitemap":
				inSitemap = false
			case "url":
				cur = nil
			}
		}
	}

	switch {
	case seenIndex:
		doc.typ = TypeIndex
	case seenURLSet:
		doc.typ = TypeURLSet
	}
	return &doc, nil
}

func (d *document) set(tag, text string, cur *urlEntry) {
	switch tag {
	case "loc":
		d.hasLoc = true
		if cur != nil && cur.loc == "" {
			cur.loc = text
		}
	case "changefreq":
		d.hasChangeFreq = true
		if cur != nil && cur.changeFreq == "" {
			cur.changeFreq = text
		}
	case "priority":
		d.hasPriority = true
		if cur != nil && cur.priority == "" {
			cur.priority = text
		}
	}
}
