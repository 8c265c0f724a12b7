package editor

import (
	"sort"

	"github.com/gardar/hocredit/pkg/undo"
)

// cropRun records, while a crop chain is applied, which of its nodes changed
// their box. Every node of the chain rewrites its entry on each Redo, nearest
// to the leaves first.
type cropRun map[*Node]bool

// shrinks reports whether a child of n changed during this run.
func (r cropRun) shrinks(n *Node) bool {
	for _, c := range n.children.Items() {
		if r[c] {
			return true
		}
	}
	return false
}

// cropToChildren sets the box of n to the union of its children, evaluated
// when the command runs. A seed is always cropped; any other node only when
// one of its children changed in the same run. A node without children keeps
// its box, and a childless seed counts as changed so that its parent crops.
func cropToChildren(n *Node, seed bool, run cropRun) undo.Command {
	return setBBox(n, undo.Deferred(func() Rect {
		box := n.bbox
		switch {
		case n.children.Len() == 0:
			run[n] = seed
			return box
		case seed || run.shrinks(n):
			box = UnionOf(n.children.Items())
		}
		run[n] = box != n.bbox
		return box
	}))
}

// CropParents returns one deferred crop per non-root ascendant of n, nearest
// first. The parent of n is always cropped; the climb stops at the first
// ascendant whose box does not change.
func CropParents(n *Node) []undo.Command {
	p := n.Parent()
	if p == nil {
		return nil
	}
	return cropChains([]*Node{p})
}

// cropChains crops every node of seeds and climbs their non-root ascendants,
// once each, deepest first so that parents see their children's new boxes.
func cropChains(seeds []*Node) []undo.Command {
	depth := make(map[*Node]int)
	isSeed := make(map[*Node]bool)
	var order []*Node
	for _, n := range seeds {
		if n == nil || n.IsRoot() {
			continue
		}
		isSeed[n] = true
		chain := append([]*Node{n}, n.Ascendants()...)
		for i, x := range chain {
			if x == nil || x.IsRoot() {
				continue
			}
			if _, ok := depth[x]; ok {
				continue
			}
			// chain ends at the root, so its length gives the depth of x
			depth[x] = len(chain) - i
			order = append(order, x)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return depth[order[i]] > depth[order[j]] })

	run := make(cropRun, len(order))
	cmds := make([]undo.Command, 0, len(order))
	for _, x := range order {
		cmds = append(cmds, cropToChildren(x, isSeed[x], run))
	}
	return cmds
}

// Crop shrinks each node to the union of its children and then crops its
// ascendants while they keep shrinking. Words and images have no children and
// only their ascendants change.
func (d *Document) Crop(nodes ...*Node) error {
	if len(nodes) == 0 {
		return ErrNoNodes
	}
	for _, n := range nodes {
		if !d.indexed(n) {
			return ErrNotInDocument
		}
	}
	d.execute("crop", cropChains(nodes))
	return nil
}
