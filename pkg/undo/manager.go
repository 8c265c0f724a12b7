package undo

import (
	"errors"
	"io"
	"log/slog"
)

// Manager errors
var (
	// ErrNestedBatch is the panic value raised when BeginBatch is called while a
	// batch is already open.
	ErrNestedBatch = errors.New("undo: batch already in progress")
)

// EventKind identifies what changed the stacks.
type EventKind int

const (
	// Executed means a batch was pushed onto the undo stack.
	Executed EventKind = iota
	// Undone means a batch moved from the undo stack to the redo stack.
	Undone
	// Redone means a batch moved from the redo stack back to the undo stack.
	Redone
	// Cleared means both stacks were emptied.
	Cleared
)

func (k EventKind) String() string {
	switch k {
	case Executed:
		return "executed"
	case Undone:
		return "undone"
	case Redone:
		return "redone"
	case Cleared:
		return "cleared"
	}
	return "unknown"
}

// StackEvent is delivered to subscribers whenever the stacks change.
type StackEvent struct {
	Kind  EventKind
	Batch Batch // nil for Cleared
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for batch tracing and precondition warnings.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithLimit bounds the undo stack depth. Zero keeps every batch.
func WithLimit(n int) Option {
	return func(m *Manager) { m.limit = n }
}

// Manager owns the undo and redo stacks.
//
// It is not safe for concurrent use: all commands are applied from the single
// goroutine that owns the edited objects.
type Manager struct {
	undo     []Batch
	redo     []Batch
	pending  Batch
	batching bool
	limit    int

	subscribers map[int]func(StackEvent)
	nextSub     int

	log *slog.Logger
}

// NewManager returns an idle manager with empty stacks.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		subscribers: make(map[int]func(StackEvent)),
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers fn for stack change notifications and returns a function
// that removes it.
func (m *Manager) Subscribe(fn func(StackEvent)) (cancel func()) {
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() { delete(m.subscribers, id) }
}

func (m *Manager) notify(ev StackEvent) {
	for i := 0; i < m.nextSub; i++ {
		if fn, ok := m.subscribers[i]; ok {
			fn(ev)
		}
	}
}

// ExecuteCommand applies a single command. See ExecuteCommands.
func (m *Manager) ExecuteCommand(c Command) {
	m.ExecuteCommands(c)
}

// ExecuteCommands applies each command in order. When idle the commands become
// one undoable batch and the redo stack is cleared; while batching they join
// the pending batch.
func (m *Manager) ExecuteCommands(cmds ...Command) {
	if len(cmds) == 0 {
		return
	}
	batch := Batch(append([]Command(nil), cmds...))
	batch.redo()

	if m.batching {
		m.pending = append(m.pending, batch...)
		return
	}
	m.push(batch)
}

func (m *Manager) push(batch Batch) {
	m.undo = append(m.undo, batch)
	if m.limit > 0 && len(m.undo) > m.limit {
		m.undo = m.undo[len(m.undo)-m.limit:]
	}
	m.redo = nil
	m.log.Debug("batch executed", "commands", len(batch), "undo_depth", len(m.undo))
	m.notify(StackEvent{Kind: Executed, Batch: batch})
}

// BeginBatch opens a batch. Commands executed until ExecuteBatch are applied
// immediately but undone and redone together.
//
// Batches do not nest; calling BeginBatch while one is open panics with
// ErrNestedBatch.
func (m *Manager) BeginBatch() {
	if m.batching {
		panic(ErrNestedBatch)
	}
	m.batching = true
	m.pending = nil
}

// InBatch reports whether a batch is open.
func (m *Manager) InBatch() bool { return m.batching }

// ExecuteBatch closes the open batch and pushes it as one undo step if it
// holds any command.
func (m *Manager) ExecuteBatch() {
	if !m.batching {
		m.log.Warn("ExecuteBatch called without an open batch")
		return
	}
	batch := m.pending
	m.pending = nil
	m.batching = false
	if len(batch) == 0 {
		return
	}
	m.push(batch)
}

// AbortBatch reverts every command of the open batch and closes it without
// touching the stacks.
func (m *Manager) AbortBatch() {
	if !m.batching {
		m.log.Warn("AbortBatch called without an open batch")
		return
	}
	m.pending.undo()
	m.log.Debug("batch aborted", "commands", len(m.pending))
	m.pending = nil
	m.batching = false
}

// Transaction runs fn inside a batch. The batch is executed when fn returns
// nil and aborted otherwise; fn's error is returned.
func (m *Manager) Transaction(fn func() error) (err error) {
	m.BeginBatch()
	defer func() {
		if r := recover(); r != nil {
			m.AbortBatch()
			panic(r)
		}
		if err != nil {
			m.AbortBatch()
			return
		}
		m.ExecuteBatch()
	}()
	return fn()
}

// Undo reverts the most recent batch. It is a no-op when nothing can be undone.
func (m *Manager) Undo() {
	if m.batching {
		m.log.Warn("Undo ignored while a batch is open")
		return
	}
	if len(m.undo) == 0 {
		m.log.Warn("Undo ignored: undo stack is empty")
		return
	}
	batch := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	batch.undo()
	m.redo = append(m.redo, batch)
	m.log.Debug("batch undone", "commands", len(batch), "redo_depth", len(m.redo))
	m.notify(StackEvent{Kind: Undone, Batch: batch})
}

// Redo reapplies the most recently undone batch. It is a no-op when nothing
// can be redone.
func (m *Manager) Redo() {
	if m.batching {
		m.log.Warn("Redo ignored while a batch is open")
		return
	}
	if len(m.redo) == 0 {
		m.log.Warn("Redo ignored: redo stack is empty")
		return
	}
	batch := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	batch.redo()
	m.undo = append(m.undo, batch)
	m.log.Debug("batch redone", "commands", len(batch), "undo_depth", len(m.undo))
	m.notify(StackEvent{Kind: Redone, Batch: batch})
}

// Clear empties both stacks without touching any object state. It is ignored
// while a batch is open, since the pending commands belong to that batch.
func (m *Manager) Clear() {
	if m.batching {
		m.log.Warn("Clear ignored while a batch is open")
		return
	}
	m.undo = nil
	m.redo = nil
	m.notify(StackEvent{Kind: Cleared})
}

// CanUndo reports whether the undo stack is non-empty.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDepth returns the number of undoable batches.
func (m *Manager) UndoDepth() int { return len(m.undo) }

// RedoDepth returns the number of redoable batches.
func (m *Manager) RedoDepth() int { return len(m.redo) }
