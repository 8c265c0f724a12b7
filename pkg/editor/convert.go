package editor

import (
	"fmt"
	"image"
	"maps"
	"math"

	"github.com/gardar/hocredit/pkg/hocr"
)

// FromHOCRPage converts an ocr_page element into a detached tree ready for
// Document.Build. Nodes are numbered from 0 in pre-order. Missing levels of
// the hierarchy (words directly under a paragraph, lines directly under an
// area, ...) are filled in with containers cropped to their children.
func FromHOCRPage(page hocr.Element) (*Node, error) {
	if page.Class != hocr.ClassPage {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrInvalidTree, hocr.ClassPage, page.Class)
	}
	next := 0
	return fromElement(page, func() int { id := next; next++; return id }, image.Point{})
}

// ImportSubtree converts a recognition result into detached nodes with ids
// allocated by doc, translated by origin. A page element yields its
// children, wrapped as needed to sit directly under a page; any other
// element yields itself.
func ImportSubtree(doc *Document, el hocr.Element, origin image.Point) ([]*Node, error) {
	if el.Class != hocr.ClassPage {
		n, err := fromElement(el, doc.AllocateID, origin)
		if err != nil {
			return nil, err
		}
		return []*Node{n}, nil
	}
	holder := NewNode(Page, RootParentID, Rect{})
	if err := appendElements(holder, el.Children, doc.AllocateID, origin); err != nil {
		return nil, err
	}
	return holder.children.Items(), nil
}

func fromElement(e hocr.Element, nextID func() int, origin image.Point) (*Node, error) {
	typ, ok := NodeTypeFromClass(e.Class)
	if !ok {
		return nil, fmt.Errorf("%w: unknown hOCR class %q", ErrInvalidTree, e.Class)
	}
	n := NewNode(typ, nextID(), rectFromBox(e.BBox).Offset(origin.X, origin.Y))
	n.Lang = e.Lang
	if len(e.Props) > 0 {
		n.Props = maps.Clone(e.Props)
	}
	if typ == Word {
		n.text = e.Text
		return n, nil
	}

	if err := appendElements(n, e.Children, nextID, origin); err != nil {
		return nil, err
	}
	return n, nil
}

// appendElements converts elems and appends them to n, synthesizing the
// container levels n cannot hold directly.
func appendElements(n *Node, elems []hocr.Element, nextID func() int, origin image.Point) error {
	// wrappers holds the synthesized container chain of the previous child,
	// reused while consecutive children need the same levels.
	var wrappers []*Node
	for _, ce := range elems {
		c, err := fromElement(ce, nextID, origin)
		if err != nil {
			return err
		}
		if CanParent(n.typ, c.typ) {
			wrappers = nil
			n.AppendChildren(c)
			continue
		}
		path := levelsBetween(n.typ, c.typ)
		if path == nil {
			return fmt.Errorf("%w: %s cannot contain %s", ErrIncompatibleParent, n.typ, c.typ)
		}
		if !sameLevels(wrappers, path) {
			wrappers = wrappers[:0:0]
			parent := n
			for _, t := range path {
				w := NewNode(t, nextID(), c.bbox)
				parent.AppendChildren(w)
				wrappers = append(wrappers, w)
				parent = w
			}
		}
		wrappers[len(wrappers)-1].AppendChildren(c)
		for i := len(wrappers) - 1; i >= 0; i-- {
			wrappers[i].bbox = UnionOf(wrappers[i].children.Items())
		}
	}
	return nil
}

// levelsBetween returns the container types needed between parent and child,
// outermost first, or nil when child cannot be placed below parent at all.
func levelsBetween(parent, child NodeType) []NodeType {
	for _, p := range allowedParents[child] {
		if p == parent {
			return []NodeType{}
		}
		if up := levelsBetween(parent, p); up != nil {
			return append(up, p)
		}
	}
	return nil
}

func sameLevels(wrappers []*Node, path []NodeType) bool {
	if len(wrappers) == 0 || len(wrappers) != len(path) {
		return false
	}
	for i, w := range wrappers {
		if w.typ != path[i] {
			return false
		}
	}
	return true
}

func rectFromBox(b hocr.BoundingBox) Rect {
	return NewRect(round(b.X1), round(b.Y1), round(b.X2), round(b.Y2))
}

func round(f float64) int { return int(math.Round(f)) }

// ToElement converts n and its subtree back to an hOCR element.
func ToElement(n *Node) hocr.Element {
	e := hocr.Element{
		Class: n.typ.Class(),
		ID:    elementID(n),
		Lang:  n.Lang,
		BBox:  hocr.NewBoundingBox(float64(n.bbox.Left), float64(n.bbox.Top), float64(n.bbox.Right), float64(n.bbox.Bottom)),
		Text:  n.text,
		Props: maps.Clone(n.Props),
	}
	for _, c := range n.children.Items() {
		e.Children = append(e.Children, ToElement(c))
	}
	return e
}

var idPrefixes = map[NodeType]string{
	Page:        "page",
	ContentArea: "block",
	Paragraph:   "par",
	Word:        "word",
	Image:       "photo",
}

func elementID(n *Node) string {
	prefix, ok := idPrefixes[n.typ]
	if !ok {
		prefix = "line"
	}
	return fmt.Sprintf("%s_%d", prefix, n.id)
}

// ToHOCR converts the document to an hOCR document with a single page,
// keeping the header of the loaded file.
func ToHOCR(doc *Document) *hocr.HOCR {
	out := &hocr.HOCR{
		Title:       doc.header.Title,
		Description: doc.header.Description,
		Language:    doc.header.Language,
		Metadata:    maps.Clone(doc.header.Metadata),
	}
	if doc.root != nil {
		out.Pages = []hocr.Element{ToElement(doc.root)}
	}
	return out
}

// Load parses hOCR data and builds doc from its first page.
func Load(doc *Document, data []byte) error {
	return LoadPage(doc, data, 0)
}

// LoadPage parses hOCR data and builds doc from the page at index.
func LoadPage(doc *Document, data []byte, index int) error {
	parsed, err := hocr.ParseHOCR(data)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(parsed.Pages) {
		return fmt.Errorf("page %d of %d: %w", index, len(parsed.Pages), ErrInvalidIndex)
	}
	root, err := FromHOCRPage(parsed.Pages[index])
	if err != nil {
		return fmt.Errorf("page %d: %w", index, err)
	}
	if err := doc.Build(root); err != nil {
		return err
	}
	parsed.Pages = nil
	doc.header = parsed
	return nil
}

// Save renders the document as hOCR and clears the unsaved-edits flag.
func Save(doc *Document) ([]byte, error) {
	out, err := hocr.GenerateHOCRDocument(ToHOCR(doc))
	if err != nil {
		return nil, err
	}
	doc.MarkSaved()
	return []byte(out), nil
}
