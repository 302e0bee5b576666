// Package graph holds the two trees reconstructed from a crawl and the
// builder that grows them.
//
// A Tree keeps parent and child links on its nodes and a name index on the
// side. Both are updated together by Add and Reparent, the only two ways a
// tree changes.
package graph

import (
	"errors"
	"fmt"
)

// ErrCycle is returned by Reparent when the new parent is the node itself or
// one of its descendants.
var ErrCycle = errors.New("reparent would create a cycle")

type CycleError struct {
	Node   string
	Parent string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %q under %q", ErrCycle, e.Node, e.Parent)
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

type Node struct {
	Name     string
	parent   *Node
	children []*Node
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the node's children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

func (n *Node) isAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) attach(parent *Node) {
	n.parent = parent
	parent.children = append(parent.children, n)
}

type Tree struct {
	root  *Node
	index map[string]*Node
	size  int
}

func NewTree(rootLabel string) *Tree {
	return &Tree{
		root:  &Node{Name: rootLabel},
		index: make(map[string]*Node),
		size:  1,
	}
}

func (t *Tree) Root() *Node {
	return t.root
}

// Len counts every node including the root.
func (t *Tree) Len() int {
	return t.size
}

// Find returns the first node created with name, or nil. The root is not
// indexed.
func (t *Tree) Find(name string) *Node {
	return t.index[name]
}

// Add always creates a new node under parent, even if name already exists.
func (t *Tree) Add(parent *Node, name string) *Node {
	n := &Node{Name: name}
	n.attach(parent)
	t.size++
	if _, ok := t.index[name]; !ok {
		t.index[name] = n
	}
	return n
}

// FindOrCreate returns the node named name, creating it under the root when
// absent. Repeated calls with the same name return the same node.
func (t *Tree) FindOrCreate(name string) *Node {
	if n := t.index[name]; n != nil {
		return n
	}
	return t.Add(t.root, name)
}

// Reparent moves node under newParent. The node is detached from its old
// parent's children before being appended to newParent's. A move that would
// create a cycle returns a *CycleError and leaves the tree unchanged.
func (t *Tree) Reparent(node, newParent *Node) error {
	if node == t.root {
		return fmt.Errorf("cannot reparent root %q", node.Name)
	}
	if node.isAncestorOf(newParent) {
		return &CycleError{Node: node.Name, Parent: newParent.Name}
	}
	if node.parent == newParent {
		return nil
	}
	node.detach()
	node.attach(newParent)
	return nil
}

// Walk visits every node depth-first in pre-order. fn returning false skips
// the node's subtree.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.children {
			visit(c, depth+1)
		}
	}
	visit(t.root, 0)
}
