package editor

import (
	"fmt"

	"github.com/gardar/hocredit/pkg/undo"
)

// Splice appends detached subtrees under target as one undoable step, crops
// the target chain and selects the new roots. The subtrees must already use
// ids that are free in the document, see ImportSubtree.
func (d *Document) Splice(target *Node, roots ...*Node) error {
	if len(roots) == 0 {
		return ErrNoNodes
	}
	if !d.indexed(target) {
		return fmt.Errorf("splice into %s: %w", target, ErrNotInDocument)
	}
	seen := make(map[int]bool)
	for _, r := range roots {
		if r.doc != nil {
			return fmt.Errorf("splice %s: %w", r, ErrAttached)
		}
		if !CanParent(target.typ, r.typ) {
			return fmt.Errorf("splice %s into %s: %w", r, target, ErrIncompatibleParent)
		}
		for _, x := range preOrder(r) {
			if seen[x.id] || d.byID[x.id] != nil {
				return fmt.Errorf("%w: id %d already in use", ErrInvalidTree, x.id)
			}
			seen[x.id] = true
			for _, c := range x.children.Items() {
				if !CanParent(x.typ, c.typ) {
					return fmt.Errorf("splice %s under %s: %w", c, x, ErrIncompatibleParent)
				}
			}
		}
	}

	cmds := d.insertNodes(target, target.children.Len(), target, roots)
	cmds = append(cmds, cropChains([]*Node{target})...)
	cmds = append(cmds, undo.Clear(d.selection), undo.Add(d.selection, roots...))
	d.execute("splice", cmds)
	return nil
}
