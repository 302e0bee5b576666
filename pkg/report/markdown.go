package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/devraulu/sitegraph/pkg/crawler"
)

// MarkdownWriter renders the same report as TextWriter in Markdown, with the
// trees in text code blocks.
type MarkdownWriter struct {
	output io.Writer
	head   int
}

func NewMarkdownWriter(w io.Writer, head int) *MarkdownWriter {
	return &MarkdownWriter{output: w, head: head}
}

func (w *MarkdownWriter) Write(res *crawler.Result) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, res)
	if err := w.writeTrees(md, res); err != nil {
		return err
	}
	w.writeRecords(md, res)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, res *crawler.Result) {
	md.H1("Site Graph Report")
	md.PlainText("")

	rows := [][]string{
		{"Site Root", "`" + res.SiteRoot + "`"},
		{"Sitemaps", strings.Join(res.Sitemaps, "<br>")},
		{"Records", strconv.Itoa(res.Stats.Records)},
		{"Pages Processed", strconv.Itoa(res.Stats.PagesProcessed)},
		{"Pages Errored", strconv.Itoa(res.Stats.PagesErrored)},
		{"Back Links", strconv.Itoa(res.Stats.BackLinks)},
		{"Forward Links", strconv.Itoa(res.Stats.ForwardLinks)},
		{"Cycles Ignored", strconv.Itoa(res.Stats.Cycles)},
		{"Elapsed", res.Stats.Elapsed().Round(time.Millisecond).String()},
	}
	if res.Stats.StartTime.IsZero() {
		rows = rows[:len(rows)-1]
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTrees(md *markdown.Markdown, res *crawler.Result) error {
	parents, err := renderTree(res.Hierarchy)
	if err != nil {
		return err
	}
	sisters, err := renderTree(res.Sequence)
	if err != nil {
		return err
	}

	md.H2("Parents")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, strings.TrimRight(parents, "\n"))
	md.PlainText("")

	md.H2("Sisters")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, strings.TrimRight(sisters, "\n"))
	md.PlainText("")
	return nil
}

func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, res *crawler.Result) {
	if res.Records == nil {
		return
	}

	md.H2("Records")
	md.PlainText("")

	head := res.Records.Head(w.head)
	if len(head) == 0 {
		md.PlainText("No records.")
		md.PlainText("")
	} else {
		rows := make([][]string, 0, len(head))
		for i, r := range head {
			rows = append(rows, []string{strconv.Itoa(i), r.Loc, r.ChangeFreq, r.Priority, r.Domain, r.SitemapName})
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "loc", "changefreq", "priority", "domain", "sitemap_name"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	md.H2("Summary")
	md.PlainText("")

	sum := res.Records.Summary()
	rows := make([][]string, 0, len(sum.Columns))
	for _, c := range sum.Columns {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count), strconv.Itoa(c.Unique), c.Top, strconv.Itoa(c.Freq)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"column", "count", "unique", "top", "freq"},
		Rows:   rows,
	})
}
