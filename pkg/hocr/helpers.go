package hocr

import (
	"strings"
)

// ExtractHOCRText extracts all text from an HOCR document
// Pages are separated by blank lines
func ExtractHOCRText(hocrDoc *HOCR) string {
	pages := make([]string, 0, len(hocrDoc.Pages))
	for _, page := range hocrDoc.Pages {
		pages = append(pages, ExtractText(page))
	}
	return strings.Join(pages, "\n\n")
}

// ExtractText returns the text of an element: the text of a word, words
// joined by spaces for line-like elements, lines joined by newlines for
// paragraphs and paragraphs joined by blank lines above that.
func ExtractText(e Element) string {
	switch e.Class {
	case ClassWord:
		return strings.TrimSpace(e.Text)
	case ClassPhoto, ClassImage, ClassGraphic:
		return ""
	}
	parts := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		if t := ExtractText(c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, separatorFor(e.Class))
}

func separatorFor(class string) string {
	switch {
	case IsLineClass(class):
		return " "
	case class == ClassParagraph:
		return "\n"
	default:
		return "\n\n"
	}
}

// Offset translates e and all its descendants.
func (e *Element) Offset(dx, dy float64) {
	e.Walk(func(x *Element) bool {
		x.BBox = NewBoundingBox(x.BBox.X1+dx, x.BBox.Y1+dy, x.BBox.X2+dx, x.BBox.Y2+dy)
		return true
	})
}
