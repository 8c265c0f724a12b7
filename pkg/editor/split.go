package editor

import (
	"fmt"
	"maps"

	"github.com/gardar/hocredit/pkg/undo"
)

// Split cuts a word at offset pixels from its left edge into two words. The
// original keeps the left piece and a new word with a fresh id takes the
// right piece, right after the original in its line and in the node list.
// In left-to-right text the original holds first and the new word holds
// second; right-to-left text swaps them. Both halves end up selected.
func (d *Document) Split(word *Node, offset int, first, second string) (*Node, error) {
	if !d.indexed(word) {
		return nil, fmt.Errorf("split %s: %w", word, ErrNotInDocument)
	}
	if word.typ != Word {
		return nil, fmt.Errorf("split %s: %w", word, ErrNotAWord)
	}
	if offset <= 0 || offset >= word.bbox.Width() {
		return nil, fmt.Errorf("split %s at %d: %w", word, offset, ErrInvalidOffset)
	}
	parent := word.Parent()
	if parent == nil {
		panic(fmt.Sprintf("editor: indexed word %s has no parent", word))
	}

	leftText, rightText := first, second
	if d.TextDirection() == RightToLeft {
		leftText, rightText = second, first
	}
	cut := word.bbox.Left + offset
	leftBox, rightBox := word.bbox, word.bbox
	leftBox.Right = cut
	rightBox.Left = cut

	piece := NewWord(d.AllocateID(), rightBox, rightText)
	piece.Lang = word.Lang
	piece.Props = maps.Clone(word.Props)
	if piece.Props == nil {
		piece.Props = make(map[string]string)
	}

	cmds := []undo.Command{
		setText(word, leftText),
		setBBox(word, undo.Literal(leftBox)),
	}
	cmds = append(cmds, d.insertNodes(parent, parent.children.IndexOf(word)+1, word, []*Node{piece})...)
	cmds = append(cmds, cropChains([]*Node{parent})...)
	cmds = append(cmds, undo.Clear(d.selection), undo.Add(d.selection, word, piece))
	d.execute("split", cmds)
	return piece, nil
}
