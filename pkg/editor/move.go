package editor

import (
	"fmt"

	"github.com/gardar/hocredit/pkg/undo"
)

// Move re-parents nodes under target, inserting them in order at index of
// its children (appending when index is negative). The old parents and the
// target chain are cropped afterwards.
func (d *Document) Move(nodes []*Node, target *Node, index int) error {
	if len(nodes) == 0 {
		return ErrNoNodes
	}
	if !d.indexed(target) {
		return fmt.Errorf("move to %s: %w", target, ErrNotInDocument)
	}
	nodes = topmost(d.sortByDocumentOrder(distinct(nodes)))
	for _, n := range nodes {
		if !d.indexed(n) {
			return fmt.Errorf("move %s: %w", n, ErrNotInDocument)
		}
		if n.IsRoot() {
			return fmt.Errorf("move: %w", ErrRootNode)
		}
		if n == target || target.IsDescendantOf(n) {
			return fmt.Errorf("move %s under %s: %w", n, target, ErrCycle)
		}
		if !CanParent(target.typ, n.typ) {
			return fmt.Errorf("move %s under %s: %w", n, target, ErrIncompatibleParent)
		}
	}
	if index < 0 {
		index = target.children.Len()
	}
	if index > target.children.Len() {
		return fmt.Errorf("move to %s at %d: %w", target, index, ErrInvalidIndex)
	}

	// Nodes already under target and before index shift the insertion point
	// once they are taken out.
	at := index
	for _, n := range nodes {
		if n.parentID == target.id && target.children.IndexOf(n) < index {
			at--
		}
	}

	var cmds []undo.Command
	var oldParents []*Node
	for _, n := range nodes {
		p := n.Parent()
		cmds = append(cmds, undo.Remove(p.children, n))
		if p != target {
			oldParents = append(oldParents, p)
		}
	}
	for k, n := range nodes {
		cmds = append(cmds, setParentID(n, target.id), undo.Insert(target.children, at+k, n))
	}
	cmds = append(cmds, cropChains(append(oldParents, target))...)
	d.execute("move", cmds)
	return nil
}

// Reorder moves n to index among its siblings.
func (d *Document) Reorder(n *Node, index int) error {
	if !d.indexed(n) {
		return fmt.Errorf("reorder %s: %w", n, ErrNotInDocument)
	}
	p := n.Parent()
	if p == nil {
		return fmt.Errorf("reorder: %w", ErrRootNode)
	}
	if index < 0 || index >= p.children.Len() {
		return fmt.Errorf("reorder %s to %d: %w", n, index, ErrInvalidIndex)
	}
	from := p.children.IndexOf(n)
	if from == index {
		return nil
	}
	d.execute("reorder", []undo.Command{undo.Move(p.children, from, index)})
	return nil
}
