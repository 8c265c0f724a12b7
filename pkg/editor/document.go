package editor

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/gardar/hocredit/pkg/hocr"
	"github.com/gardar/hocredit/pkg/undo"
)

// EventKind identifies a change notification.
type EventKind int

const (
	BBoxChanged EventKind = iota
	TextChanged
	ParentChanged
	ChildrenChanged
	NodesChanged
	SelectionChanged
)

// Event describes one change of the document. Node is nil for
// SelectionChanged and NodesChanged.
type Event struct {
	Kind EventKind
	Node *Node
}

// Config holds editing options.
type Config struct {
	PasteOffset int       // Visual offset applied to pasted nodes, in pixels
	Direction   Direction // Text direction; DirectionAuto detects it from the page text
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		PasteOffset: 10,
		Direction:   DirectionAuto,
	}
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger shared by the document and its history.
func WithLogger(log *slog.Logger) Option {
	return func(d *Document) {
		if log != nil {
			d.log = log
		}
	}
}

// WithObserver installs a change observer.
func WithObserver(fn func(Event)) Option {
	return func(d *Document) { d.observer = fn }
}

// WithConfig replaces the default editing options.
func WithConfig(cfg Config) Option {
	return func(d *Document) { d.cfg = cfg }
}

// Document is one editable page: the node arena, the id index, the selection
// and the undo history. It is owned by a single goroutine.
type Document struct {
	nodes     *undo.List[*Node]
	byID      map[int]*Node
	selection *undo.List[*Node]
	root      *Node
	nextID    int
	dirty     bool
	header    hocr.HOCR // title and metadata of the loaded file

	history  *undo.Manager
	observer func(Event)
	cfg      Config
	log      *slog.Logger
}

// NewDocument returns an empty document. Call Build to load a page.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		byID: make(map[int]*Node),
		cfg:  DefaultConfig(),
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "editor")
	d.history = undo.NewManager(undo.WithLogger(d.log.With("component", "undo")))
	d.history.Subscribe(d.trackDirty)
	d.resetLists()
	return d
}

func (d *Document) resetLists() {
	d.nodes = undo.NewList[*Node]()
	d.nodes.SetHooks(undo.ListHooks[*Node]{
		Inserted: func(_ int, n *Node) {
			d.byID[n.id] = n
			d.attach(n)
			d.emit(Event{Kind: NodesChanged})
		},
		Removed: func(_ int, n *Node) {
			if d.byID[n.id] == n {
				delete(d.byID, n.id)
			}
			d.emit(Event{Kind: NodesChanged})
		},
	})
	d.selection = undo.NewList[*Node]()
	d.selection.SetHooks(undo.ListHooks[*Node]{
		Inserted: func(int, *Node) { d.emit(Event{Kind: SelectionChanged}) },
		Removed:  func(int, *Node) { d.emit(Event{Kind: SelectionChanged}) },
	})
}

// attach binds n to the document and routes its children changes to the
// observer.
func (d *Document) attach(n *Node) {
	n.doc = d
	n.children.SetHooks(undo.ListHooks[*Node]{
		Inserted: func(int, *Node) { d.emit(Event{Kind: ChildrenChanged, Node: n}) },
		Removed:  func(int, *Node) { d.emit(Event{Kind: ChildrenChanged, Node: n}) },
	})
}

func (d *Document) emit(ev Event) {
	if d.observer != nil {
		d.observer(ev)
	}
}

// trackDirty raises the unsaved-edits flag for any batch touching more than
// the selection.
func (d *Document) trackDirty(ev undo.StackEvent) {
	if ev.Kind == undo.Cleared {
		return
	}
	for _, s := range ev.Batch.Senders() {
		if s != d.selection {
			d.dirty = true
			return
		}
	}
}

// Build loads a complete tree with pre-existing ids. Parent ids are derived
// from the structure, the selection and the history are cleared and the
// document is marked clean.
func (d *Document) Build(root *Node) error {
	if root == nil || root.typ != Page {
		return fmt.Errorf("%w: root must be a page", ErrInvalidTree)
	}

	seen := make(map[int]bool)
	maxID := -1
	var check func(*Node) error
	check = func(n *Node) error {
		if seen[n.id] {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidTree, n.id)
		}
		if n.id < 0 {
			return fmt.Errorf("%w: negative id %d", ErrInvalidTree, n.id)
		}
		seen[n.id] = true
		maxID = max(maxID, n.id)
		for _, c := range n.children.Items() {
			if !CanParent(n.typ, c.typ) {
				return fmt.Errorf("%w: %s cannot contain %s", ErrIncompatibleParent, n, c)
			}
			c.parentID = n.id
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(root); err != nil {
		return err
	}
	root.parentID = RootParentID

	d.byID = make(map[int]*Node, len(seen))
	d.resetLists()
	for _, n := range preOrder(root) {
		d.nodes.Append(n)
	}
	d.root = root
	d.nextID = maxID + 1
	d.history.Clear()
	d.dirty = false
	d.log.Debug("document built", "nodes", d.nodes.Len(), "next_id", d.nextID)
	return nil
}

func preOrder(root *Node) []*Node {
	return append([]*Node{root}, root.Descendants()...)
}

// Root returns the page node.
func (d *Document) Root() *Node { return d.root }

// History returns the undo/redo manager.
func (d *Document) History() *undo.Manager { return d.history }

// Config returns the editing options.
func (d *Document) Config() Config { return d.cfg }

// Nodes returns the flat node list. It holds every node of the page in
// insertion order.
func (d *Document) Nodes() *undo.List[*Node] { return d.nodes }

// Selection returns the selected nodes.
func (d *Document) Selection() *undo.List[*Node] { return d.selection }

// SelectedNodes returns a copy of the selection.
func (d *Document) SelectedNodes() []*Node { return d.selection.Items() }

// Lookup returns the indexed node with the given id.
func (d *Document) Lookup(id int) *Node { return d.byID[id] }

// Len returns the number of indexed nodes.
func (d *Document) Len() int { return d.nodes.Len() }

// AllocateID returns a fresh node id.
func (d *Document) AllocateID() int {
	id := d.nextID
	d.nextID++
	return id
}

// Dirty reports whether committed edits are not yet saved.
func (d *Document) Dirty() bool { return d.dirty }

// MarkSaved clears the unsaved-edits flag.
func (d *Document) MarkSaved() { d.dirty = false }

// Undo reverts the last edit.
func (d *Document) Undo() { d.history.Undo() }

// Redo reapplies the last undone edit.
func (d *Document) Redo() { d.history.Redo() }

// documentIndex returns the flat list position of n, or -1.
func (d *Document) documentIndex(n *Node) int { return d.nodes.IndexOf(n) }

// sortByDocumentOrder orders nodes by their position in the flat list.
func (d *Document) sortByDocumentOrder(nodes []*Node) []*Node {
	out := append([]*Node(nil), nodes...)
	pos := make(map[*Node]int, len(out))
	for _, n := range out {
		pos[n] = d.documentIndex(n)
	}
	sort.SliceStable(out, func(i, j int) bool { return pos[out[i]] < pos[out[j]] })
	return out
}

// indexed reports whether n is part of this document.
func (d *Document) indexed(n *Node) bool {
	return n != nil && d.byID[n.id] == n
}

// execute runs commands as one undoable step, or adds them to the batch the
// caller already opened.
func (d *Document) execute(name string, cmds []undo.Command) {
	if len(cmds) == 0 {
		return
	}
	if d.history.InBatch() {
		d.history.ExecuteCommands(cmds...)
	} else {
		d.history.BeginBatch()
		d.history.ExecuteCommands(cmds...)
		d.history.ExecuteBatch()
	}
	d.log.Debug("edit applied", "op", name, "commands", len(cmds))
}

// Verify checks the structural invariants: every indexed node's parent lists
// it exactly once, every child points back at its parent, the index holds
// exactly the nodes reachable from the root and the selection only holds
// indexed nodes.
func (d *Document) Verify() error {
	if d.root == nil {
		if d.nodes.Len() != 0 {
			return fmt.Errorf("%w: nodes indexed without a root", ErrInvalidTree)
		}
		return nil
	}
	reachable := make(map[*Node]bool)
	for _, n := range preOrder(d.root) {
		if reachable[n] {
			return fmt.Errorf("%w: %s reachable twice", ErrInvalidTree, n)
		}
		reachable[n] = true
	}
	if len(reachable) != d.nodes.Len() || len(d.byID) != d.nodes.Len() {
		return fmt.Errorf("%w: %d reachable, %d listed, %d in index",
			ErrInvalidTree, len(reachable), d.nodes.Len(), len(d.byID))
	}
	for _, n := range d.nodes.Items() {
		if !reachable[n] {
			return fmt.Errorf("%w: %s indexed but unreachable", ErrInvalidTree, n)
		}
		if d.byID[n.id] != n {
			return fmt.Errorf("%w: id %d maps to another node", ErrInvalidTree, n.id)
		}
		for _, c := range n.children.Items() {
			if c.parentID != n.id {
				return fmt.Errorf("%w: %s listed under %s but has parent id %d",
					ErrInvalidTree, c, n, c.parentID)
			}
		}
		if n == d.root {
			continue
		}
		p := d.byID[n.parentID]
		if p == nil {
			return fmt.Errorf("%w: %s has unknown parent id %d", ErrInvalidTree, n, n.parentID)
		}
		if p.children.IndexOf(n) != p.children.LastIndexOf(n) || !p.children.Contains(n) {
			return fmt.Errorf("%w: %s not listed exactly once under %s", ErrInvalidTree, n, p)
		}
	}
	for _, s := range d.selection.Items() {
		if !d.indexed(s) {
			return fmt.Errorf("%w: selected %s is not indexed", ErrInvalidTree, s)
		}
	}
	return nil
}
