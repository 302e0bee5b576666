package crawler

import (
	"time"

	"github.com/google/uuid"

	"github.com/devraulu/sitegraph/pkg/graph"
	"github.com/devraulu/sitegraph/pkg/sitemap"
)

type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Sitemaps  int
	Records   int
	graph.Stats
}

// Elapsed is the run duration, or the time since start while running.
func (s *Stats) Elapsed() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

func (s *Stats) PagesPerSecond() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(s.PagesProcessed) / elapsed
}

// Result is everything a run produces. RunID is zero unless the run was
// saved.
type Result struct {
	RunID     uuid.UUID
	SiteRoot  string
	Sitemaps  []string
	Records   *sitemap.RecordStore
	Hierarchy *graph.Tree
	Sequence  *graph.Tree
	Stats     Stats
}
