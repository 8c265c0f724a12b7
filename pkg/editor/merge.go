package editor

import (
	"fmt"
	"strings"

	"github.com/gardar/hocredit/pkg/undo"
)

// Merge joins two or more nodes of the same type into the one that comes
// first in document order. Words concatenate their text and boxes; containers
// hand their children to the host. The absorbed nodes and the ancestors they
// leave empty are removed, the host chain is cropped and the host becomes the
// selection.
func (d *Document) Merge(nodes ...*Node) (*Node, error) {
	nodes = distinct(nodes)
	if len(nodes) < 2 {
		return nil, ErrTooFewNodes
	}
	typ := nodes[0].typ
	for _, n := range nodes {
		if !d.indexed(n) {
			return nil, fmt.Errorf("merge %s: %w", n, ErrNotInDocument)
		}
		if n.IsRoot() {
			return nil, fmt.Errorf("merge: %w", ErrRootNode)
		}
		if n.typ != typ {
			return nil, fmt.Errorf("merge %s with %s: %w", nodes[0], n, ErrMixedTypes)
		}
	}

	ordered := d.sortByDocumentOrder(nodes)
	host, others := ordered[0], ordered[1:]

	var cmds []undo.Command
	var keep []*Node
	if typ == Word {
		var text strings.Builder
		for _, n := range ordered {
			text.WriteString(n.text)
		}
		cmds = append(cmds,
			setText(host, text.String()),
			setBBox(host, undo.Literal(UnionOf(ordered))),
		)
		keep = append(keep, host.Parent())
	} else {
		for _, o := range others {
			moved := o.children.Items()
			if len(moved) == 0 {
				continue
			}
			cmds = append(cmds, undo.Clear(o.children))
			for _, g := range moved {
				cmds = append(cmds, setParentID(g, host.id))
			}
			cmds = append(cmds, undo.Add(host.children, moved...))
		}
		keep = append(keep, host)
	}

	cmds = append(cmds, d.removeCommands(removalSet(others), keep...)...)
	cmds = append(cmds, undo.Clear(d.selection), undo.Add(d.selection, host))
	d.execute("merge", cmds)
	return host, nil
}

// MergeSelection merges the selected nodes.
func (d *Document) MergeSelection() (*Node, error) {
	return d.Merge(d.SelectedNodes()...)
}

func distinct(nodes []*Node) []*Node {
	seen := make(map[*Node]bool, len(nodes))
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
