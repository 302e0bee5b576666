package graph

import (
	"context"
	"errors"

	gc "gopkg.in/check.v1"

	"github.com/devraulu/sitegraph/pkg/process"
)

const site = "https://www.example.com"

type BuilderTestSuite struct {
	b *Builder
}

var _ = gc.Suite(new(BuilderTestSuite))

func (s *BuilderTestSuite) SetUpTest(c *gc.C) {
	s.b = NewBuilder(site, WithRootLabel("EXAMPLE"))
}

// stubExtract serves canned links per page URL.
func stubExtract(pages map[string][]process.LinkElement) ExtractFunc {
	return func(_ context.Context, pageURL string) ([]process.LinkElement, error) {
		return pages[pageURL], nil
	}
}

func (s *BuilderTestSuite) TestBackLinkReparentsCurrentPage(c *gc.C) {
	pages := map[string][]process.LinkElement{
		site + "/guide/intro": {{Href: "/guide", Text: "< Back"}},
	}

	h, seq, err := s.b.Process(context.Background(), []string{site + "/guide/intro"}, stubExtract(pages))
	c.Assert(err, gc.IsNil)

	page := h.Find(site + "/guide/intro")
	c.Assert(page, gc.NotNil)
	c.Assert(page.Parent().Name, gc.Equals, site+"/guide")
	c.Assert(page.Parent().Parent() == h.Root(), gc.Equals, true)

	c.Assert(seq.Root().Children(), gc.HasLen, 1)
	c.Assert(seq.Root().Children()[0].Children(), gc.HasLen, 0)
}

func (s *BuilderTestSuite) TestBackLinkOverridesPreviousParent(c *gc.C) {
	p := site + "/p"
	pages := map[string][]process.LinkElement{
		p: {
			{Href: "/first", Text: "< Back"},
			{Href: "/second", Text: "< Back"},
		},
	}

	h, _, err := s.b.Process(context.Background(), []string{p}, stubExtract(pages))
	c.Assert(err, gc.IsNil)
	c.Assert(h.Find(p).Parent().Name, gc.Equals, site+"/second")
	c.Assert(h.Find(site+"/first").Children(), gc.HasLen, 0)
}

func (s *BuilderTestSuite) TestForwardLinkAddsSequenceChildOnly(c *gc.C) {
	p := site + "/chapter-1"
	pages := map[string][]process.LinkElement{
		p: {{Href: "/chapter-2", Text: "Next >"}},
	}

	h, seq, err := s.b.Process(context.Background(), []string{p}, stubExtract(pages))
	c.Assert(err, gc.IsNil)

	visits := seq.Root().Children()
	c.Assert(visits, gc.HasLen, 1)
	c.Assert(visits[0].Name, gc.Equals, p)
	next := visits[0].Children()
	c.Assert(next, gc.HasLen, 1)
	c.Assert(next[0].Name, gc.Equals, site+"/chapter-2")

	// the target is still known to the hierarchy, but nothing moved
	c.Assert(h.Find(p).Parent() == h.Root(), gc.Equals, true)
	c.Assert(h.Find(site+"/chapter-2").Parent() == h.Root(), gc.Equals, true)
	c.Assert(s.b.Stats.ForwardLinks, gc.Equals, 1)
	c.Assert(s.b.Stats.BackLinks, gc.Equals, 0)
}

func (s *BuilderTestSuite) TestLinkWithBothMarkers(c *gc.C) {
	p := site + "/p"
	pages := map[string][]process.LinkElement{
		p: {{Href: "/q", Text: "< both >"}},
	}

	h, seq, err := s.b.Process(context.Background(), []string{p}, stubExtract(pages))
	c.Assert(err, gc.IsNil)
	c.Assert(h.Find(p).Parent().Name, gc.Equals, site+"/q")
	c.Assert(seq.Root().Children()[0].Children(), gc.HasLen, 1)
}

func (s *BuilderTestSuite) TestMarkersAreExact(c *gc.C) {
	p := site + "/p"
	pages := map[string][]process.LinkElement{
		p: {
			{Href: "/a", Text: " < Back"},
			{Href: "/b", Text: "<Back"},
			{Href: "/c", Text: "Next > "},
			{Href: "/d", Text: "Next>"},
		},
	}

	h, seq, err := s.b.Process(context.Background(), []string{p}, stubExtract(pages))
	c.Assert(err, gc.IsNil)
	c.Assert(h.Find(p).Parent() == h.Root(), gc.Equals, true)
	c.Assert(seq.Root().Children()[0].Children(), gc.HasLen, 0)
	c.Assert(h.Root().Children(), gc.HasLen, 5)
}

func (s *BuilderTestSuite) TestCustomMarkers(c *gc.C) {
	b := NewBuilder(site, WithBackMarker("Up: "), WithForwardMarker(""))
	p := site + "/p"
	pages := map[string][]process.LinkElement{
		p: {
			{Href: "/parent", Text: "Up: Parent"},
			{Href: "/next", Text: "Next >"},
		},
	}

	h, seq, err := b.Process(context.Background(), []string{p}, stubExtract(pages))
	c.Assert(err, gc.IsNil)
	c.Assert(h.Find(p).Parent().Name, gc.Equals, site+"/parent")
	c.Assert(seq.Root().Children()[0].Children(), gc.HasLen, 0)
	c.Assert(h.Root().Name, gc.Equals, site)
}

func (s *BuilderTestSuite) TestSiteRootIsSkipped(c *gc.C) {
	called := 0
	extract := func(context.Context, string) ([]process.LinkElement, error) {
		called++
		return nil, nil
	}

	h, seq, err := s.b.Process(context.Background(), []string{site + "/", site + "/a"}, extract)
	c.Assert(err, gc.IsNil)
	c.Assert(called, gc.Equals, 1)
	c.Assert(h.Find(site+"/"), gc.IsNil)
	c.Assert(seq.Root().Children(), gc.HasLen, 1)
	c.Assert(s.b.Stats.PagesSkipped, gc.Equals, 1)
}

func (s *BuilderTestSuite) TestSequenceNodesAreNotDeduplicated(c *gc.C) {
	p := site + "/p"
	pages := map[string][]process.LinkElement{
		p: {{Href: "/q", Text: "Go >"}, {Href: "/q", Text: "Again >"}},
	}

	_, seq, err := s.b.Process(context.Background(), []string{p, p}, stubExtract(pages))
	c.Assert(err, gc.IsNil)

	visits := seq.Root().Children()
	c.Assert(visits, gc.HasLen, 2)
	for _, v := range visits {
		c.Assert(v.Children(), gc.HasLen, 2)
	}
}

func (s *BuilderTestSuite) TestLaterPageReparentsEarlierTarget(c *gc.C) {
	a, b := site+"/a", site+"/b"
	pages := map[string][]process.LinkElement{
		a: {{Href: "/b", Text: "see also"}},
		b: {{Href: "/hub", Text: "< Hub"}},
	}

	h, _, err := s.b.Process(context.Background(), []string{a, b}, stubExtract(pages))
	c.Assert(err, gc.IsNil)
	c.Assert(h.Find(b).Parent().Name, gc.Equals, site+"/hub")
	c.Assert(h.Len(), gc.Equals, 4)
}

func (s *BuilderTestSuite) TestCycleIsReportedNotFixed(c *gc.C) {
	a, b := site+"/a", site+"/b"
	pages := map[string][]process.LinkElement{
		a: {{Href: "/b", Text: "< B"}},
		b: {{Href: "/a", Text: "< A"}},
	}

	h, _, err := s.b.Process(context.Background(), []string{a, b}, stubExtract(pages))
	c.Assert(err, gc.IsNil)
	c.Assert(h.Find(a).Parent().Name, gc.Equals, b)
	c.Assert(h.Find(b).Parent() == h.Root(), gc.Equals, true)
	c.Assert(s.b.Stats.Cycles, gc.Equals, 1)
}

func (s *BuilderTestSuite) TestExtractErrorAborts(c *gc.C) {
	boom := errors.New("boom")
	extract := func(_ context.Context, u string) ([]process.LinkElement, error) {
		if u == site+"/b" {
			return nil, boom
		}
		return nil, nil
	}

	h, seq, err := s.b.Process(context.Background(), []string{site + "/a", site + "/b", site + "/c"}, extract)
	c.Assert(errors.Is(err, boom), gc.Equals, true)
	c.Assert(h, gc.IsNil)
	c.Assert(seq, gc.IsNil)
}

func (s *BuilderTestSuite) TestExtractErrorContinues(c *gc.C) {
	b := NewBuilder(site, WithContinueOnError(true))
	extract := func(_ context.Context, u string) ([]process.LinkElement, error) {
		if u == site+"/b" {
			return nil, errors.New("boom")
		}
		return []process.LinkElement{{Href: "/up", Text: "< Up"}}, nil
	}

	h, seq, err := b.Process(context.Background(), []string{site + "/a", site + "/b", site + "/c"}, extract)
	c.Assert(err, gc.IsNil)
	c.Assert(seq.Root().Children(), gc.HasLen, 3)
	c.Assert(h.Find(site+"/b").Parent() == h.Root(), gc.Equals, true)
	c.Assert(h.Find(site+"/c").Parent().Name, gc.Equals, site+"/up")
	c.Assert(b.Stats.PagesErrored, gc.Equals, 1)
	c.Assert(b.Stats.PagesProcessed, gc.Equals, 2)
}

// Two child sitemaps of two pages each, every page linking back to a hub.
func (s *BuilderTestSuite) TestEndToEndBackLinks(c *gc.C) {
	urls := []string{site + "/a1", site + "/a2", site + "/b1", site + "/b2"}
	pages := map[string][]process.LinkElement{
		urls[0]: {{Href: "/a", Text: "< A"}},
		urls[1]: {{Href: "/a", Text: "< A"}},
		urls[2]: {{Href: "/b", Text: "< B"}},
		urls[3]: {{Href: "/a1", Text: "< A1"}},
	}

	h, seq, err := s.b.Process(context.Background(), urls, stubExtract(pages))
	c.Assert(err, gc.IsNil)

	c.Assert(h.Find(urls[0]).Parent().Name, gc.Equals, site+"/a")
	c.Assert(h.Find(urls[1]).Parent().Name, gc.Equals, site+"/a")
	c.Assert(h.Find(urls[2]).Parent().Name, gc.Equals, site+"/b")
	c.Assert(h.Find(urls[3]).Parent() == h.Find(urls[0]), gc.Equals, true)

	visits := seq.Root().Children()
	c.Assert(visits, gc.HasLen, 4)
	for i, v := range visits {
		c.Assert(v.Name, gc.Equals, urls[i])
		c.Assert(len(v.Children()) <= 1, gc.Equals, true)
	}
}
