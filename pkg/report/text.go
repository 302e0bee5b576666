package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rodaine/table"

	"github.com/devraulu/sitegraph/pkg/crawler"
	"github.com/devraulu/sitegraph/pkg/graph"
)

// TextWriter prints the trees under "*** PARENTS" and "*** SISTERS"
// headings followed by the record table.
type TextWriter struct {
	output io.Writer
	head   int
}

func NewTextWriter(w io.Writer, head int) *TextWriter {
	return &TextWriter{output: w, head: head}
}

func (w *TextWriter) Write(res *crawler.Result) error {
	bw := bufio.NewWriter(w.output)

	fmt.Fprintln(bw, "*** PARENTS")
	if err := graph.Render(bw, res.Hierarchy); err != nil {
		return err
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "*** SISTERS")
	if err := graph.Render(bw, res.Sequence); err != nil {
		return err
	}
	fmt.Fprintln(bw)

	w.writeRecords(bw, res)
	return bw.Flush()
}

func (w *TextWriter) writeRecords(bw *bufio.Writer, res *crawler.Result) {
	if res.Records == nil {
		return
	}

	fmt.Fprintf(bw, "*** RECORDS (%d rows)\n", res.Records.Len())
	tbl := table.New("#", "loc", "changefreq", "priority", "domain", "sitemap_name").WithWriter(bw)
	for i, r := range res.Records.Head(w.head) {
		tbl.AddRow(i, r.Loc, r.ChangeFreq, r.Priority, r.Domain, r.SitemapName)
	}
	tbl.Print()
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "*** SUMMARY")
	sum := table.New("column", "count", "unique", "top", "freq").WithWriter(bw)
	for _, c := range res.Records.Summary().Columns {
		sum.AddRow(c.Name, c.Count, c.Unique, c.Top, c.Freq)
	}
	sum.Print()
}
