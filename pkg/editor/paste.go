package editor

import (
	"fmt"
	"sort"

	"github.com/gardar/hocredit/pkg/undo"
)

// Clipboard holds detached copies of copied subtrees. The copies keep their
// original ids and parent ids; every paste clones them again.
type Clipboard struct {
	roots []*Node
}

// Len returns the number of copied subtrees.
func (c *Clipboard) Len() int {
	if c == nil {
		return 0
	}
	return len(c.roots)
}

// Roots returns the copied subtree roots.
func (c *Clipboard) Roots() []*Node { return append([]*Node(nil), c.roots...) }

// Copy captures nodes and their descendants. Nodes below another copied node
// are part of that node's copy.
func (d *Document) Copy(nodes ...*Node) (*Clipboard, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	for _, n := range nodes {
		if !d.indexed(n) {
			return nil, fmt.Errorf("copy %s: %w", n, ErrNotInDocument)
		}
		if n.IsRoot() {
			return nil, fmt.Errorf("copy: %w", ErrRootNode)
		}
	}
	clip := &Clipboard{}
	for _, n := range topmost(d.sortByDocumentOrder(nodes)) {
		clip.roots = append(clip.roots, n.Clone())
	}
	return clip, nil
}

// CopySelection copies the selected nodes.
func (d *Document) CopySelection() (*Clipboard, error) {
	return d.Copy(d.SelectedNodes()...)
}

type pasteGroup struct {
	parent *Node
	roots  []*Node
	flat   int
}

// Paste inserts fresh copies of the clipboard with new ids, shifted by the
// configured paste offset (to the left in right-to-left text). When exactly
// one node is selected and it can contain every copied node, the copies go
// under it and are moved inside its box. Otherwise each copy returns to its
// original parent. The pasted roots become the selection.
func (d *Document) Paste(clip *Clipboard) ([]*Node, error) {
	if clip.Len() == 0 {
		return nil, ErrEmptyClipboard
	}

	var target *Node
	if sel := d.selection.Items(); len(sel) == 1 {
		target = sel[0]
		for _, r := range clip.roots {
			if !CanParent(target.typ, r.typ) {
				target = nil
				break
			}
		}
	}

	parents := make([]*Node, len(clip.roots))
	for i, r := range clip.roots {
		if target != nil {
			parents[i] = target
			continue
		}
		p := d.Lookup(r.parentID)
		if p == nil || !CanParent(p.typ, r.typ) {
			return nil, fmt.Errorf("paste %s: %w", r, ErrParentGone)
		}
		parents[i] = p
	}

	dx, dy := d.cfg.PasteOffset, d.cfg.PasteOffset
	if d.TextDirection() == RightToLeft {
		dx = -dx
	}

	var groups []*pasteGroup
	byParent := make(map[*Node]*pasteGroup)
	pasted := make([]*Node, 0, len(clip.roots))
	for i, r := range clip.roots {
		c := d.renumber(r.Clone())
		translate(c, dx, dy)
		if target != nil {
			cx, cy := c.bbox.clampDelta(target.bbox)
			translate(c, cx, cy)
		}
		g := byParent[parents[i]]
		if g == nil {
			g = &pasteGroup{parent: parents[i]}
			byParent[parents[i]] = g
			groups = append(groups, g)
		}
		g.roots = append(g.roots, c)
		pasted = append(pasted, c)
	}

	// Later flat positions go first so earlier insertions do not shift them.
	for _, g := range groups {
		g.flat = d.subtreeEnd(g.parent)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].flat > groups[j].flat })

	var cmds []undo.Command
	for _, g := range groups {
		cmds = append(cmds, d.insertNodes(g.parent, g.parent.children.Len(), g.parent, g.roots)...)
	}
	cmds = append(cmds, cropChains(parentsOf(groups))...)
	cmds = append(cmds, undo.Clear(d.selection), undo.Add(d.selection, pasted...))
	d.execute("paste", cmds)
	return pasted, nil
}

func parentsOf(groups []*pasteGroup) []*Node {
	out := make([]*Node, len(groups))
	for i, g := range groups {
		out[i] = g.parent
	}
	return out
}

// renumber gives every node of a detached subtree a fresh id and relinks the
// children's parent ids.
func (d *Document) renumber(root *Node) *Node {
	for _, n := range preOrder(root) {
		n.id = d.AllocateID()
	}
	for _, n := range preOrder(root) {
		for _, c := range n.children.Items() {
			c.parentID = n.id
		}
	}
	return root
}

func translate(root *Node, dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, n := range preOrder(root) {
		n.bbox = n.bbox.Offset(dx, dy)
	}
}

// subtreeEnd returns the flat list position right after n and its
// descendants.
func (d *Document) subtreeEnd(n *Node) int {
	end := d.documentIndex(n) + 1
	for _, x := range n.Descendants() {
		end = max(end, d.documentIndex(x)+1)
	}
	return end
}
