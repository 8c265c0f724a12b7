package hocr

import "strconv"

// hOCR class names understood by the parser.
const (
	ClassPage      = "ocr_page"
	ClassArea      = "ocr_carea"
	ClassBlock     = "ocr_block"
	ClassParagraph = "ocr_par"
	ClassLine      = "ocr_line"
	ClassHeader    = "ocr_header"
	ClassFooter    = "ocr_footer"
	ClassCaption   = "ocr_caption"
	ClassTextFloat = "ocr_textfloat"
	ClassWord      = "ocrx_word"
	ClassPhoto     = "ocr_photo"
	ClassImage     = "ocr_image"
	ClassGraphic   = "ocr_graphic"
)

var knownClasses = map[string]bool{
	ClassPage: true, ClassArea: true, ClassBlock: true, ClassParagraph: true,
	ClassLine: true, ClassHeader: true, ClassFooter: true, ClassCaption: true,
	ClassTextFloat: true, ClassWord: true, ClassPhoto: true, ClassImage: true,
	ClassGraphic: true,
}

// IsKnownClass reports whether class is one of the element classes the
// parser turns into an Element.
func IsKnownClass(class string) bool { return knownClasses[class] }

// IsLineClass reports whether class holds words directly.
func IsLineClass(class string) bool {
	switch class {
	case ClassLine, ClassHeader, ClassFooter, ClassCaption, ClassTextFloat:
		return true
	}
	return false
}

// HOCR represents the entire hOCR document structure
type HOCR struct {
	Title       string            // Document title
	Description string            // Document description
	Language    string            // Document language
	Metadata    map[string]string // Additional metadata
	Pages       []Element         // ocr_page elements
}

// Element is one node of the hOCR hierarchy: a page, area, paragraph,
// line-like span, word or image.
type Element struct {
	Class    string            // hOCR class, e.g. 'ocr_line'
	ID       string            // id attribute
	Lang     string            // lang attribute
	BBox     BoundingBox       // bbox title property
	Text     string            // Text content, words only
	Props    map[string]string // Other title properties (baseline, x_wconf, image, ...)
	Children []Element         // Nested hOCR elements in document order
}

// Confidence returns the x_wconf property of a word, or 0.
func (e Element) Confidence() float64 {
	v, _ := strconv.ParseFloat(e.Props["x_wconf"], 64)
	return v
}

// Walk calls fn for e and every descendant in pre-order. Returning false
// skips the children of that element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for i := range e.Children {
		e.Children[i].Walk(fn)
	}
}

// Words returns every word below e in document order.
func (e Element) Words() []Element {
	var out []Element
	e.Walk(func(x *Element) bool {
		if x.Class == ClassWord {
			out = append(out, *x)
			return false
		}
		return true
	})
	return out
}

// BoundingBox represents a rectangle in the document
// Used to store hOCR 'bbox' property values
type BoundingBox struct {
	X1 float64 // Left coordinate
	Y1 float64 // Top coordinate
	X2 float64 // Right coordinate
	Y2 float64 // Bottom coordinate
}

// NewBoundingBox creates a bounding box from the x1, y1 (top left) and
// x2, y2 (bottom right) coordinates of an hOCR 'bbox' property.
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }
