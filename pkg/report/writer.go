// Package report presents a crawl result: the two trees and the sitemap
// record table.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/devraulu/sitegraph/pkg/crawler"
	"github.com/devraulu/sitegraph/pkg/graph"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

var ErrUnknownFormat = errors.New("unknown report format")

type Writer interface {
	Write(res *crawler.Result) error
}

// New returns the writer for format. head is the number of record rows
// shown before the summary.
func New(format string, w io.Writer, head int) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(w, head), nil
	case FormatMarkdown:
		return NewMarkdownWriter(w, head), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderTree(t *graph.Tree) (string, error) {
	var sb strings.Builder
	if err := graph.Render(&sb, t); err != nil {
		return "", err
	}
	return sb.String(), nil
}
