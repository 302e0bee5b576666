package graph

import (
	"bufio"
	"io"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	guideMid   = "│   "
	guideLast  = "    "
)

// Render writes the tree one node per line in depth-first pre-order, each
// line indented by tree-drawing guides proportional to its depth.
func Render(w io.Writer, t *Tree) error {
	bw := bufio.NewWriter(w)

	var visit func(n *Node, prefix string)
	visit = func(n *Node, prefix string) {
		for i, c := range n.children {
			branch, guide := branchMid, guideMid
			if i == len(n.children)-1 {
				branch, guide = branchLast, guideLast
			}
			bw.WriteString(prefix + branch + c.Name + "\n")
			visit(c, prefix+guide)
		}
	}

	bw.WriteString(t.root.Name + "\n")
	visit(t.root, "")
	return bw.Flush()
}
