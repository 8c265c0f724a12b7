package editor

import (
	"fmt"
	"strings"

	"github.com/gardar/hocredit/pkg/undo"
)

// UpdateBoxes applies boxes produced by a drag or resize and crops the
// parents of the changed nodes.
func (d *Document) UpdateBoxes(boxes map[*Node]Rect) error {
	if len(boxes) == 0 {
		return ErrNoNodes
	}
	nodes := make([]*Node, 0, len(boxes))
	for n := range boxes {
		if !d.indexed(n) {
			return fmt.Errorf("update box of %s: %w", n, ErrNotInDocument)
		}
		nodes = append(nodes, n)
	}
	nodes = d.sortByDocumentOrder(nodes)

	var cmds []undo.Command
	var parents []*Node
	for _, n := range nodes {
		if n.bbox == boxes[n] {
			continue
		}
		cmds = append(cmds, setBBox(n, undo.Literal(boxes[n])))
		if p := n.Parent(); p != nil {
			if _, own := boxes[p]; !own {
				parents = append(parents, p)
			}
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	d.execute("update boxes", append(cmds, cropChains(parents)...))
	return nil
}

// EditText replaces the text of a word.
func (d *Document) EditText(word *Node, text string) error {
	if !d.indexed(word) {
		return fmt.Errorf("edit %s: %w", word, ErrNotInDocument)
	}
	if word.typ != Word {
		return fmt.Errorf("edit %s: %w", word, ErrNotAWord)
	}
	if word.text == text {
		return nil
	}
	d.execute("edit text", []undo.Command{setText(word, text)})
	return nil
}

// ApplyText sets the text of a word, or distributes whitespace separated
// text over the words of any other node in reading order. The number of
// fields must match the number of words.
func (d *Document) ApplyText(n *Node, text string) error {
	if !d.indexed(n) {
		return fmt.Errorf("apply text to %s: %w", n, ErrNotInDocument)
	}
	if n.typ == Word {
		return d.EditText(n, text)
	}
	var words []*Node
	for _, x := range n.Descendants() {
		if x.typ == Word {
			words = append(words, x)
		}
	}
	fields := strings.Fields(text)
	if len(fields) != len(words) {
		return fmt.Errorf("apply %d words to %s with %d: %w", len(fields), n, len(words), ErrWordCount)
	}
	var cmds []undo.Command
	for i, w := range words {
		if w.text != fields[i] {
			cmds = append(cmds, setText(w, fields[i]))
		}
	}
	d.execute("apply text", cmds)
	return nil
}
