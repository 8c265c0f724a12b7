package editor

import (
	"fmt"

	"github.com/gardar/hocredit/pkg/undo"
)

// removalSet extends nodes with every ascendant left without children once
// nodes are gone. The root is never part of the set.
func removalSet(nodes []*Node) map[*Node]bool {
	set := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	for _, n := range nodes {
		for p := n.Parent(); p != nil && !p.IsRoot() && !set[p]; p = p.Parent() {
			if !allIn(p.children.Items(), set) {
				break
			}
			set[p] = true
		}
	}
	return set
}

func allIn(nodes []*Node, set map[*Node]bool) bool {
	for _, n := range nodes {
		if !set[n] {
			return false
		}
	}
	return true
}

// removeCommands returns the commands removing the subtrees in set: the
// selection entries inside them, the tree removal itself and the crops of the
// surviving parents. Extra nodes in keep are cropped as well.
func (d *Document) removeCommands(set map[*Node]bool, keep ...*Node) []undo.Command {
	var roots []*Node
	for _, n := range d.nodes.Items() {
		if set[n] {
			roots = append(roots, n)
		}
	}
	roots = topmost(roots)

	var cmds []undo.Command
	var deselect []*Node
	for _, s := range d.selection.Items() {
		if set[s] || inRemovedSubtree(s, set) {
			deselect = append(deselect, s)
		}
	}
	if len(deselect) > 0 {
		cmds = append(cmds, undo.Remove(d.selection, deselect...))
	}
	cmds = append(cmds, RemoveNodes(d, roots...))

	survivors := append([]*Node(nil), keep...)
	for _, r := range roots {
		if p := r.Parent(); p != nil && !set[p] {
			survivors = append(survivors, p)
		}
	}
	return append(cmds, cropChains(survivors)...)
}

func inRemovedSubtree(n *Node, set map[*Node]bool) bool {
	for _, a := range n.Ascendants() {
		if set[a] {
			return true
		}
	}
	return false
}

// Delete removes nodes with their descendants and every ancestor they leave
// empty, drops all of them from the selection and crops the surviving
// parents. The page node cannot be deleted.
func (d *Document) Delete(nodes ...*Node) error {
	if len(nodes) == 0 {
		return ErrNoNodes
	}
	for _, n := range nodes {
		if !d.indexed(n) {
			return fmt.Errorf("delete %s: %w", n, ErrNotInDocument)
		}
		if n.IsRoot() {
			return fmt.Errorf("delete: %w", ErrRootNode)
		}
	}
	d.execute("delete", d.removeCommands(removalSet(topmost(nodes))))
	return nil
}

// DeleteSelection deletes the selected nodes.
func (d *Document) DeleteSelection() error {
	return d.Delete(d.SelectedNodes()...)
}
