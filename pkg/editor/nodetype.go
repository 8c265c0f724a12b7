package editor

import "fmt"

// NodeType classifies a node of the hOCR hierarchy.
type NodeType int

const (
	Page NodeType = iota
	ContentArea
	Paragraph
	Line
	Header
	Footer
	Caption
	TextFloat
	Word
	Image
)

var nodeTypeNames = [...]string{
	Page:        "Page",
	ContentArea: "ContentArea",
	Paragraph:   "Paragraph",
	Line:        "Line",
	Header:      "Header",
	Footer:      "Footer",
	Caption:     "Caption",
	TextFloat:   "TextFloat",
	Word:        "Word",
	Image:       "Image",
}

func (t NodeType) String() string {
	if t >= 0 && int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// hOCR class names, in the form written out by Save.
var nodeTypeClasses = map[NodeType]string{
	Page:        "ocr_page",
	ContentArea: "ocr_carea",
	Paragraph:   "ocr_par",
	Line:        "ocr_line",
	Header:      "ocr_header",
	Footer:      "ocr_footer",
	Caption:     "ocr_caption",
	TextFloat:   "ocr_textfloat",
	Word:        "ocrx_word",
	Image:       "ocr_photo",
}

// Class returns the hOCR class name of the type.
func (t NodeType) Class() string { return nodeTypeClasses[t] }

// NodeTypeFromClass maps an hOCR class name to a node type.
func NodeTypeFromClass(class string) (NodeType, bool) {
	for t, c := range nodeTypeClasses {
		if c == class {
			return t, true
		}
	}
	switch class {
	case "ocr_image", "ocr_graphic":
		return Image, true
	case "ocr_block":
		return ContentArea, true
	}
	return 0, false
}

// allowedParents is the static parent-type table. Page has no parent.
var allowedParents = map[NodeType][]NodeType{
	ContentArea: {Page},
	Image:       {Page},
	Paragraph:   {ContentArea},
	Line:        {Paragraph},
	Header:      {Paragraph},
	Footer:      {Paragraph},
	Caption:     {Paragraph},
	TextFloat:   {Paragraph},
	Word:        {Line, Header, Footer, Caption, TextFloat},
}

// CanParent reports whether a node of type child may be placed under a node
// of type parent.
func CanParent(parent, child NodeType) bool {
	for _, p := range allowedParents[child] {
		if p == parent {
			return true
		}
	}
	return false
}

// IsLineLike reports whether t holds words directly.
func (t NodeType) IsLineLike() bool {
	switch t {
	case Line, Header, Footer, Caption, TextFloat:
		return true
	}
	return false
}

// separator joins the text of children for InnerText.
func (t NodeType) separator() string {
	switch {
	case t.IsLineLike():
		return " "
	case t == Paragraph:
		return "\n"
	default:
		return "\n\n"
	}
}
