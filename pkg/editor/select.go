package editor

import (
	"fmt"

	"github.com/gardar/hocredit/pkg/undo"
)

// Select replaces the selection with nodes. Selection changes are undoable
// but do not mark the document dirty.
func (d *Document) Select(nodes ...*Node) error {
	nodes = distinct(nodes)
	for _, n := range nodes {
		if !d.indexed(n) {
			return fmt.Errorf("select %s: %w", n, ErrNotInDocument)
		}
	}
	var cmds []undo.Command
	if d.selection.Len() > 0 {
		cmds = append(cmds, undo.Clear(d.selection))
	}
	if len(nodes) > 0 {
		cmds = append(cmds, undo.Add(d.selection, nodes...))
	}
	d.execute("select", cmds)
	return nil
}

// ClearSelection empties the selection.
func (d *Document) ClearSelection() {
	if d.selection.Len() == 0 {
		return
	}
	d.execute("clear selection", []undo.Command{undo.Clear(d.selection)})
}

// CycleSelection moves a single selected node to the next (or previous) node
// of the same type in reading order and returns it. The walk wraps around
// the page.
func (d *Document) CycleSelection(forward bool) (*Node, error) {
	if d.selection.Len() != 1 {
		return nil, fmt.Errorf("cycle selection of %d nodes: %w", d.selection.Len(), ErrNoNodes)
	}
	next := d.sibling(d.selection.At(0), forward)
	if next == nil || next == d.selection.At(0) {
		return next, nil
	}
	d.execute("cycle selection", []undo.Command{undo.Clear(d.selection), undo.Add(d.selection, next)})
	return next, nil
}

// sibling walks from n to the following (or preceding) sibling subtrees,
// climbing to the parent when a level runs out, and returns the first node
// of n's type found in them. At the root it wraps to the first (or last)
// such node of the page.
func (d *Document) sibling(n *Node, forward bool) *Node {
	find := firstOfType
	if !forward {
		find = lastOfType
	}
	for cur := n; ; {
		p := cur.Parent()
		if p == nil {
			return find(d.root, n.typ)
		}
		siblings := p.children.Items()
		i := p.children.IndexOf(cur)
		for {
			if forward {
				i++
			} else {
				i--
			}
			if i < 0 || i >= len(siblings) {
				break
			}
			if m := find(siblings[i], n.typ); m != nil {
				return m
			}
		}
		cur = p
	}
}

// firstOfType returns the first node of type t in the pre-order walk of n.
func firstOfType(n *Node, t NodeType) *Node {
	if n.typ == t {
		return n
	}
	for _, c := range n.children.Items() {
		if m := firstOfType(c, t); m != nil {
			return m
		}
	}
	return nil
}

// lastOfType returns the last node of type t in the pre-order walk of n.
func lastOfType(n *Node, t NodeType) *Node {
	children := n.children.Items()
	for i := len(children) - 1; i >= 0; i-- {
		if m := lastOfType(children[i], t); m != nil {
			return m
		}
	}
	if n.typ == t {
		return n
	}
	return nil
}
