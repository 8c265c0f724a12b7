package undo

import (
	"errors"
	"reflect"
	"testing"
)

type box struct {
	width int
	label string
}

func widthOf(b *box) Property[int] {
	return Property[int]{
		Name: "width",
		Get:  func() int { return b.width },
		Set:  func(v int) { b.width = v },
	}
}

func labelOf(b *box) Property[string] {
	return Property[string]{
		Name: "label",
		Get:  func() string { return b.label },
		Set:  func(v string) { b.label = v },
	}
}

func TestPropertyChange_RoundTrip(t *testing.T) {
	b := &box{width: 10}
	c := NewPropertyChange(b, widthOf(b), Literal(42))

	for i := 0; i < 3; i++ {
		c.Redo()
		if b.width != 42 {
			t.Fatalf("expected width 42 after redo, got %d", b.width)
		}
		c.Undo()
		if b.width != 10 {
			t.Fatalf("expected width 10 after undo, got %d", b.width)
		}
	}
	if c.Sender() != b {
		t.Error("expected sender to be the box")
	}
}

func TestPropertyChange_DeferredEvaluatedAtRedo(t *testing.T) {
	b := &box{width: 1}
	src := &box{width: 5}

	c := NewPropertyChange(b, widthOf(b), Deferred(func() int { return src.width * 2 }))
	if !c.Value().IsDeferred() {
		t.Fatal("expected deferred value")
	}

	src.width = 7
	c.Redo()
	if b.width != 14 {
		t.Errorf("expected deferred value computed at redo (14), got %d", b.width)
	}
	c.Undo()
	if b.width != 1 {
		t.Errorf("expected old value 1, got %d", b.width)
	}
}

func TestPropertyChange_SamePropertyTwiceInBatch(t *testing.T) {
	b := &box{width: 1}
	m := NewManager()

	first := NewPropertyChange(b, widthOf(b), Literal(2))
	second := NewPropertyChange(b, widthOf(b), Literal(3))
	m.ExecuteCommands(first, second)
	if b.width != 3 {
		t.Fatalf("expected 3, got %d", b.width)
	}

	second.Undo()
	if b.width != 2 {
		t.Errorf("expected second undo to restore the intermediate value 2, got %d", b.width)
	}
	second.Redo()

	m.Undo()
	if b.width != 1 {
		t.Errorf("expected batch undo to restore 1, got %d", b.width)
	}
}

func TestPropertyChange_MissingSetterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for property without setter")
		}
	}()
	b := &box{}
	NewPropertyChange(b, Property[int]{Name: "width", Get: func() int { return b.width }}, Literal(1))
}

func TestList_Operations(t *testing.T) {
	l := NewList(1, 2, 3)
	l.Insert(1, 9)
	if got := l.Items(); !reflect.DeepEqual(got, []int{1, 9, 2, 3}) {
		t.Fatalf("unexpected items after insert: %v", got)
	}
	l.Move(0, 3)
	if got := l.Items(); !reflect.DeepEqual(got, []int{9, 2, 3, 1}) {
		t.Fatalf("unexpected items after move: %v", got)
	}
	if !l.Remove(2) || l.Contains(2) {
		t.Fatal("expected 2 to be removed")
	}
	prior := l.Clear()
	if l.Len() != 0 || !reflect.DeepEqual(prior, []int{9, 3, 1}) {
		t.Fatalf("unexpected clear result: %v, len %d", prior, l.Len())
	}
}

func TestList_HooksFire(t *testing.T) {
	var inserted, removed []int
	l := NewList[int]()
	l.SetHooks(ListHooks[int]{
		Inserted: func(_ int, v int) { inserted = append(inserted, v) },
		Removed:  func(_ int, v int) { removed = append(removed, v) },
	})
	l.Append(4, 5)
	l.RemoveAt(0)
	if !reflect.DeepEqual(inserted, []int{4, 5}) || !reflect.DeepEqual(removed, []int{4}) {
		t.Errorf("unexpected hook calls: inserted %v removed %v", inserted, removed)
	}
}

func TestAddCommand_UndoRemovesByIdentity(t *testing.T) {
	a, b := &box{label: "a"}, &box{label: "a"}
	l := NewList(a)

	c := Add(l, b, a)
	c.Redo()
	if got := l.Items(); !reflect.DeepEqual(got, []*box{a, b, a}) {
		t.Fatalf("unexpected items: %v", got)
	}
	c.Undo()
	got := l.Items()
	if len(got) != 1 || got[0] != a {
		t.Errorf("expected only the original a to remain, got %v", got)
	}
}

func TestRemoveCommand_RestoresPositions(t *testing.T) {
	l := NewList("a", "b", "c", "d", "b")
	c := Remove(l, "d", "b", "a")
	c.Redo()
	if got := l.Items(); !reflect.DeepEqual(got, []string{"c", "b"}) {
		t.Fatalf("unexpected items after remove: %v", got)
	}
	c.Undo()
	if got := l.Items(); !reflect.DeepEqual(got, []string{"a", "b", "c", "d", "b"}) {
		t.Errorf("expected original order restored, got %v", got)
	}
}

func TestInsertCommand_UndoRemovesFromIndex(t *testing.T) {
	l := NewList("x", "y")
	c1 := Insert(l, 2, "z")
	c2 := Insert(l, 0, "w")
	c1.Redo()
	c2.Redo()
	if got := l.Items(); !reflect.DeepEqual(got, []string{"w", "x", "y", "z"}) {
		t.Fatalf("unexpected items: %v", got)
	}
	c2.Undo()
	c1.Undo()
	if got := l.Items(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("expected original items, got %v", got)
	}
}

func TestInsertCommand_OutOfRangeIsNoop(t *testing.T) {
	l := NewList(1)
	c := Insert(l, 5, 2)
	c.Redo()
	c.Undo()
	if got := l.Items(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("expected untouched list, got %v", got)
	}
}

func TestMoveCommand_RoundTrip(t *testing.T) {
	l := NewList(1, 2, 3, 4)
	c := Move(l, 0, 2)
	c.Redo()
	if got := l.Items(); !reflect.DeepEqual(got, []int{2, 3, 1, 4}) {
		t.Fatalf("unexpected items after move: %v", got)
	}
	c.Undo()
	if got := l.Items(); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Errorf("expected original order, got %v", got)
	}
}

func TestClearCommand_RestoresVerbatim(t *testing.T) {
	l := NewList(3, 1, 2, 1)
	c := Clear(l)
	if !reflect.DeepEqual(c.Prior(), []int{3, 1, 2, 1}) {
		t.Fatalf("expected prior captured at construction, got %v", c.Prior())
	}
	c.Redo()
	if l.Len() != 0 {
		t.Fatalf("expected empty list, got %v", l.Items())
	}
	c.Undo()
	if got := l.Items(); !reflect.DeepEqual(got, []int{3, 1, 2, 1}) {
		t.Errorf("expected verbatim restore, got %v", got)
	}
}

func TestManager_UndoRedo(t *testing.T) {
	b := &box{width: 1, label: "start"}
	m := NewManager()

	if m.CanUndo() || m.CanRedo() {
		t.Fatal("expected empty stacks")
	}

	m.ExecuteCommands(
		NewPropertyChange(b, widthOf(b), Literal(2)),
		NewPropertyChange(b, labelOf(b), Literal("two")),
	)
	if !m.CanUndo() || m.UndoDepth() != 1 {
		t.Fatalf("expected one undoable batch, got %d", m.UndoDepth())
	}

	m.Undo()
	if b.width != 1 || b.label != "start" {
		t.Fatalf("expected pre-batch state, got %+v", *b)
	}
	m.Redo()
	if b.width != 2 || b.label != "two" {
		t.Fatalf("expected post-batch state, got %+v", *b)
	}
	m.Undo()
	if b.width != 1 || b.label != "start" {
		t.Errorf("expected pre-batch state after second undo, got %+v", *b)
	}
}

func TestManager_UndoOrderIsReversed(t *testing.T) {
	l := NewList[int]()
	m := NewManager()
	m.ExecuteCommands(Insert(l, 0, 1), Insert(l, 1, 2), Move(l, 0, 1))
	if got := l.Items(); !reflect.DeepEqual(got, []int{2, 1}) {
		t.Fatalf("unexpected items: %v", got)
	}
	m.Undo()
	if l.Len() != 0 {
		t.Errorf("expected empty list after undo, got %v", l.Items())
	}
}

func TestManager_NewCommandClearsRedo(t *testing.T) {
	b := &box{}
	m := NewManager()
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(1)))
	m.Undo()
	if !m.CanRedo() {
		t.Fatal("expected redo to be available")
	}
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(5)))
	if m.CanRedo() {
		t.Error("expected redo stack to be cleared by a new command")
	}
	m.Redo()
	if b.width != 5 {
		t.Errorf("expected redo to be a no-op, got width %d", b.width)
	}
}

func TestManager_EmptyStacksAreNoops(t *testing.T) {
	m := NewManager()
	events := 0
	m.Subscribe(func(StackEvent) { events++ })
	m.Undo()
	m.Redo()
	m.ExecuteCommands()
	if events != 0 {
		t.Errorf("expected no notifications, got %d", events)
	}
}

func TestManager_Batching(t *testing.T) {
	b := &box{}
	m := NewManager()
	var kinds []EventKind
	m.Subscribe(func(ev StackEvent) { kinds = append(kinds, ev.Kind) })

	m.BeginBatch()
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(3)))
	if b.width != 3 {
		t.Fatal("expected commands inside a batch to apply immediately")
	}
	m.ExecuteCommand(NewPropertyChange(b, labelOf(b), Literal("batched")))
	if m.CanUndo() {
		t.Fatal("expected nothing pushed before ExecuteBatch")
	}
	m.ExecuteBatch()

	if m.UndoDepth() != 1 {
		t.Fatalf("expected one batch, got %d", m.UndoDepth())
	}
	m.Undo()
	if b.width != 0 || b.label != "" {
		t.Errorf("expected whole batch undone, got %+v", *b)
	}
	if !reflect.DeepEqual(kinds, []EventKind{Executed, Undone}) {
		t.Errorf("unexpected events: %v", kinds)
	}
}

func TestManager_EmptyBatchNotPushed(t *testing.T) {
	b := &box{}
	m := NewManager()
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(1)))
	m.Undo()

	m.BeginBatch()
	m.ExecuteBatch()
	if m.CanUndo() {
		t.Error("expected empty batch to be dropped")
	}
	if !m.CanRedo() {
		t.Error("expected empty batch to leave the redo stack alone")
	}
}

func TestManager_NestedBatchPanics(t *testing.T) {
	b := &box{}
	m := NewManager()
	m.BeginBatch()
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(9)))

	func() {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !errors.Is(err, ErrNestedBatch) {
				t.Errorf("expected ErrNestedBatch panic, got %v", r)
			}
		}()
		m.BeginBatch()
	}()

	// The outer batch must still hold its command.
	if !m.InBatch() {
		t.Fatal("expected the outer batch to remain open")
	}
	m.ExecuteBatch()
	m.Undo()
	if b.width != 0 {
		t.Errorf("expected outer batch command to be undone, got %d", b.width)
	}
}

func TestManager_AbortBatch(t *testing.T) {
	l := NewList("a")
	m := NewManager()
	m.BeginBatch()
	m.ExecuteCommands(Add(l, "b"), Clear(l))
	m.AbortBatch()
	if got := l.Items(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("expected abort to restore the list, got %v", got)
	}
	if m.CanUndo() || m.InBatch() {
		t.Error("expected idle manager with empty stacks")
	}
}

func TestManager_Transaction(t *testing.T) {
	b := &box{}
	m := NewManager()
	boom := errors.New("boom")

	err := m.Transaction(func() error {
		m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(4)))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if b.width != 0 || m.CanUndo() {
		t.Fatalf("expected failed transaction to leave no trace, got width %d", b.width)
	}

	if err := m.Transaction(func() error {
		m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(4)))
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.width != 4 || m.UndoDepth() != 1 {
		t.Errorf("expected committed transaction, got width %d depth %d", b.width, m.UndoDepth())
	}
}

func TestManager_UndoIgnoredWhileBatching(t *testing.T) {
	b := &box{}
	m := NewManager()
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(1)))
	m.BeginBatch()
	m.Undo()
	if b.width != 1 {
		t.Errorf("expected undo to be ignored inside a batch, got %d", b.width)
	}
	m.ExecuteBatch()
}

func TestManager_ClearKeepsState(t *testing.T) {
	b := &box{}
	m := NewManager()
	var got []EventKind
	m.Subscribe(func(ev StackEvent) { got = append(got, ev.Kind) })
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(8)))
	m.Clear()
	if m.CanUndo() || m.CanRedo() || b.width != 8 {
		t.Errorf("expected empty stacks and untouched state, width %d", b.width)
	}
	if got[len(got)-1] != Cleared {
		t.Errorf("expected cleared event, got %v", got)
	}
}

func TestManager_ClearIgnoredWhileBatching(t *testing.T) {
	b := &box{}
	m := NewManager()
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(1)))
	m.BeginBatch()
	m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(2)))
	m.Clear()
	if !m.InBatch() || m.UndoDepth() != 1 {
		t.Fatalf("expected clear to leave the open batch and stacks alone, depth %d", m.UndoDepth())
	}
	m.ExecuteBatch()
	if m.UndoDepth() != 2 {
		t.Fatalf("expected the batch pushed on the existing history, depth %d", m.UndoDepth())
	}

	m.Clear()
	m.ExecuteBatch()
	if m.CanUndo() || b.width != 2 {
		t.Errorf("expected empty history after clear, width %d", b.width)
	}
}

func TestManager_Limit(t *testing.T) {
	b := &box{}
	m := NewManager(WithLimit(2))
	for i := 1; i <= 3; i++ {
		m.ExecuteCommand(NewPropertyChange(b, widthOf(b), Literal(i)))
	}
	if m.UndoDepth() != 2 {
		t.Fatalf("expected depth 2, got %d", m.UndoDepth())
	}
	m.Undo()
	m.Undo()
	if b.width != 1 {
		t.Errorf("expected oldest batch to be dropped, got width %d", b.width)
	}
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager()
	calls := 0
	cancel := m.Subscribe(func(StackEvent) { calls++ })
	m.Clear()
	cancel()
	m.Clear()
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestBatch_Senders(t *testing.T) {
	a, b := &box{}, &box{}
	batch := Batch{
		NewPropertyChange(a, widthOf(a), Literal(1)),
		NewPropertyChange(b, widthOf(b), Literal(1)),
		NewPropertyChange(a, labelOf(a), Literal("x")),
	}
	got := batch.Senders()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("unexpected senders: %v", got)
	}
}
