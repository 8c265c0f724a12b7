package editor

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/bidi"
)

// Direction is the reading direction of a page.
type Direction int

const (
	// DirectionAuto detects the direction from the page text.
	DirectionAuto Direction = iota
	LeftToRight
	RightToLeft
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "ltr"
	case RightToLeft:
		return "rtl"
	}
	return "auto"
}

// ParseDirection maps "ltr", "rtl" and "auto" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "ltr":
		return LeftToRight, true
	case "rtl":
		return RightToLeft, true
	case "", "auto":
		return DirectionAuto, true
	}
	return DirectionAuto, false
}

// DetectDirection returns the direction of the first strongly directional
// character of text, LeftToRight when there is none.
func DetectDirection(text string) Direction {
	for len(text) > 0 {
		p, size := bidi.LookupString(text)
		if size == 0 {
			_, size = utf8.DecodeRuneInString(text)
		}
		switch p.Class() {
		case bidi.R, bidi.AL:
			return RightToLeft
		case bidi.L:
			return LeftToRight
		}
		text = text[size:]
	}
	return LeftToRight
}

// TextDirection resolves the configured direction for this page.
func (d *Document) TextDirection() Direction {
	if d.cfg.Direction != DirectionAuto {
		return d.cfg.Direction
	}
	if d.root == nil {
		return LeftToRight
	}
	return DetectDirection(d.root.InnerText())
}
