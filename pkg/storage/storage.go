package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devraulu/sitegraph/pkg/graph"
	"github.com/devraulu/sitegraph/pkg/sitemap"
)

const (
	TreeHierarchy = "hierarchy"
	TreeSequence  = "sequence"
)

// Run is one completed crawl: the flattened records and both trees.
type Run struct {
	ID         uuid.UUID
	SiteRoot   string
	Sitemap    string
	StartedAt  time.Time
	FinishedAt time.Time
	Records    []sitemap.Record
	Hierarchy  *graph.Tree
	Sequence   *graph.Tree
}

// NodeRow is a tree node flattened in pre-order. ParentPosition is -1 for
// the root.
type NodeRow struct {
	Position       int
	Name           string
	ParentPosition int
	Depth          int
}

type Storage interface {
	SaveRun(ctx context.Context, run Run) error
	Nodes(ctx context.Context, runID uuid.UUID, tree string) ([]NodeRow, error)
	Close() error
}

// FlattenTree numbers the nodes of t in depth-first pre-order.
func FlattenTree(t *graph.Tree) []NodeRow {
	positions := make(map[*graph.Node]int)
	var rows []NodeRow

	t.Walk(func(n *graph.Node, depth int) bool {
		pos := len(rows)
		positions[n] = pos

		parent := -1
		if p := n.Parent(); p != nil {
			parent = positions[p]
		}
		rows = append(rows, NodeRow{
			Position:       pos,
			Name:           n.Name,
			ParentPosition: parent,
			Depth:          depth,
		})
		return true
	})
	return rows
}
