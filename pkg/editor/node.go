package editor

import (
	"fmt"
	"maps"
	"strings"

	"github.com/gardar/hocredit/pkg/undo"
)

// RootParentID is the ParentID of the page node.
const RootParentID = -1

// Node is one element of the page hierarchy.
//
// A node owns its ordered children. Its parent is not stored: Parent resolves
// ParentID through the document index. Geometry, text and parent id change
// only through commands.
type Node struct {
	id       int
	parentID int
	typ      NodeType
	bbox     Rect
	text     string
	children *undo.List[*Node]

	// Lang and Props carry hOCR attributes the editor preserves but never
	// edits (language, baseline, x_wconf, image, ...).
	Lang  string
	Props map[string]string

	doc *Document
}

// NewNode returns a detached node with no children.
func NewNode(typ NodeType, id int, bbox Rect) *Node {
	return &Node{
		id:       id,
		parentID: RootParentID,
		typ:      typ,
		bbox:     bbox,
		children: undo.NewList[*Node](),
		Props:    make(map[string]string),
	}
}

// NewWord returns a detached word node.
func NewWord(id int, bbox Rect, text string) *Node {
	n := NewNode(Word, id, bbox)
	n.text = text
	return n
}

// AppendChildren attaches children to a detached node while building a tree
// for Document.Build or Splice. It must not be used on indexed nodes.
func (n *Node) AppendChildren(children ...*Node) *Node {
	for _, c := range children {
		c.parentID = n.id
		n.children.Append(c)
	}
	return n
}

func (n *Node) ID() int { return n.id }
func (n *Node) ParentID() int { return n.parentID }
func (n *Node) Type() NodeType { return n.typ }
func (n *Node) BBox() Rect { return n.bbox }
func (n *Node) IsRoot() bool { return n.parentID == RootParentID && n.typ == Page }
func (n *Node) Document() *Document { return n.doc }

// Children returns the ordered child collection. Collection commands target
// this list directly.
func (n *Node) Children() *undo.List[*Node] { return n.children }

// Text returns the text stored on a word. Other node types return "".
func (n *Node) Text() string { return n.text }

// Parent returns the parent through the document index, or nil for the root
// and for nodes that are not indexed.
func (n *Node) Parent() *Node {
	if n.doc == nil || n.parentID == RootParentID {
		return nil
	}
	return n.doc.Lookup(n.parentID)
}

// Ascendants returns the chain of parents, nearest first.
func (n *Node) Ascendants() []*Node {
	var out []*Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// FindAscendant returns the nearest ascendant of type t.
func (n *Node) FindAscendant(t NodeType) *Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.typ == t {
			return p
		}
	}
	return nil
}

// IsDescendantOf reports whether a is a strict ascendant of n.
func (n *Node) IsDescendantOf(a *Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p == a {
			return true
		}
	}
	return false
}

// Descendants returns every node below n in pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(x *Node) {
		for _, c := range x.children.Items() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// InnerText returns the text of a word, or the text of all descendant words
// joined with a separator that depends on the node type.
func (n *Node) InnerText() string {
	switch n.typ {
	case Word:
		return n.text
	case Image:
		return ""
	}
	parts := make([]string, 0, n.children.Len())
	for _, c := range n.children.Items() {
		if t := c.InnerText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, n.typ.separator())
}

// Clone returns a detached deep copy. Ids are kept; internal parent ids point
// inside the copy and the clone root keeps the original ParentID.
func (n *Node) Clone() *Node {
	c := &Node{
		id:       n.id,
		parentID: n.parentID,
		typ:      n.typ,
		bbox:     n.bbox,
		text:     n.text,
		children: undo.NewList[*Node](),
		Lang:     n.Lang,
		Props:    maps.Clone(n.Props),
	}
	if c.Props == nil {
		c.Props = make(map[string]string)
	}
	for _, child := range n.children.Items() {
		cc := child.Clone()
		cc.parentID = c.id
		c.children.Append(cc)
	}
	return c
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.typ, n.id)
}

func (n *Node) setBBox(r Rect) {
	if n.bbox == r {
		return
	}
	n.bbox = r
	n.emit(Event{Kind: BBoxChanged, Node: n})
}

func (n *Node) setText(s string) {
	if n.text == s {
		return
	}
	n.text = s
	n.emit(Event{Kind: TextChanged, Node: n})
	for _, a := range n.Ascendants() {
		n.emit(Event{Kind: TextChanged, Node: a})
	}
}

func (n *Node) setParentID(id int) {
	if n.parentID == id {
		return
	}
	n.parentID = id
	n.emit(Event{Kind: ParentChanged, Node: n})
}

func (n *Node) emit(ev Event) {
	if n.doc != nil {
		n.doc.emit(ev)
	}
}
