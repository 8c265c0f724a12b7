package editor

import (
	"fmt"

	"github.com/gardar/hocredit/pkg/undo"
)

// BBoxOf selects the bounding box of n.
func BBoxOf(n *Node) undo.Property[Rect] {
	return undo.Property[Rect]{Name: "BBox", Get: n.BBox, Set: n.setBBox}
}

// TextOf selects the text of n.
func TextOf(n *Node) undo.Property[string] {
	return undo.Property[string]{Name: "Text", Get: n.Text, Set: n.setText}
}

// ParentIDOf selects the parent id of n.
func ParentIDOf(n *Node) undo.Property[int] {
	return undo.Property[int]{Name: "ParentID", Get: n.ParentID, Set: n.setParentID}
}

func setBBox(n *Node, v undo.Value[Rect]) undo.Command {
	return undo.NewPropertyChange(n, BBoxOf(n), v)
}

func setText(n *Node, s string) undo.Command {
	return undo.NewPropertyChange(n, TextOf(n), undo.Literal(s))
}

func setParentID(n *Node, id int) undo.Command {
	return undo.NewPropertyChange(n, ParentIDOf(n), undo.Literal(id))
}

type detachRecord struct {
	node   *Node
	parent *Node
	index  int
}

type unindexRecord struct {
	node  *Node
	index int
}

// RemoveNodesCommand removes subtrees from the document: each node is
// detached from its parent's children and un-indexed together with all its
// descendants. Undo restores the exact prior positions in both places.
type RemoveNodesCommand struct {
	doc   *Document
	nodes []*Node

	detached  []detachRecord
	unindexed []unindexRecord
}

// RemoveNodes builds the tree removal command for nodes. Nodes below another
// node of the set are covered by that node's removal and dropped.
func RemoveNodes(doc *Document, nodes ...*Node) *RemoveNodesCommand {
	return &RemoveNodesCommand{doc: doc, nodes: topmost(nodes)}
}

func (c *RemoveNodesCommand) Sender() any { return c.doc }

// Nodes returns the subtree roots removed by the command.
func (c *RemoveNodesCommand) Nodes() []*Node { return append([]*Node(nil), c.nodes...) }

// Redo records positions at apply time, so descendants moved away by earlier
// commands of the batch stay indexed.
func (c *RemoveNodesCommand) Redo() {
	c.detached = c.detached[:0]
	c.unindexed = c.unindexed[:0]
	for _, n := range c.nodes {
		rec := detachRecord{node: n, parent: c.doc.Lookup(n.parentID), index: -1}
		if rec.parent != nil {
			rec.index = rec.parent.children.IndexOf(n)
			if rec.index >= 0 {
				rec.parent.children.RemoveAt(rec.index)
			}
		}
		c.detached = append(c.detached, rec)

		for _, x := range preOrder(n) {
			i := c.doc.nodes.IndexOf(x)
			if i < 0 {
				continue
			}
			c.doc.nodes.RemoveAt(i)
			c.unindexed = append(c.unindexed, unindexRecord{node: x, index: i})
		}
	}
}

func (c *RemoveNodesCommand) Undo() {
	for i := len(c.unindexed) - 1; i >= 0; i-- {
		r := c.unindexed[i]
		c.doc.nodes.Insert(min(r.index, c.doc.nodes.Len()), r.node)
	}
	for i := len(c.detached) - 1; i >= 0; i-- {
		r := c.detached[i]
		if r.parent == nil || r.index < 0 {
			continue
		}
		r.parent.children.Insert(min(r.index, r.parent.children.Len()), r.node)
	}
}

func (c *RemoveNodesCommand) String() string {
	return fmt.Sprintf("remove %v", c.nodes)
}

// topmost drops every node that has an ascendant in the set, keeping order.
func topmost(nodes []*Node) []*Node {
	set := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	var out []*Node
	seen := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		if seen[n] {
			continue
		}
		seen[n] = true
		covered := false
		for _, a := range n.Ascendants() {
			if set[a] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, n)
		}
	}
	return out
}

// insertNodes returns the commands that link detached subtree roots under
// parent at index and append the subtrees to the flat list right after
// anchor (or at the end when anchor is nil).
func (d *Document) insertNodes(parent *Node, index int, anchor *Node, roots []*Node) []undo.Command {
	var cmds []undo.Command
	flat := d.nodes.Len()
	if anchor != nil && d.indexed(anchor) {
		flat = d.subtreeEnd(anchor)
	}
	for k, r := range roots {
		if r.parentID != parent.id {
			cmds = append(cmds, setParentID(r, parent.id))
		}
		for _, x := range preOrder(r) {
			cmds = append(cmds, undo.Insert(d.nodes, flat, x))
			flat++
		}
		cmds = append(cmds, undo.Insert(parent.children, index+k, r))
	}
	return cmds
}
