// Package undo implements a transactional undo/redo engine built from small,
// reversible commands.
//
// A Command mutates exactly one target object (its Sender) and knows how to
// revert that mutation. Commands are grouped into batches by a Manager, which
// applies them as one logical step and keeps two stacks of batches for undo and
// redo.
//
// Key Types:
//
// - Command: a single reversible mutation
// - PropertyChange: a typed field assignment with a literal or deferred new value
// - List: an ordered collection with injected change hooks
// - AddCommand, RemoveCommand, InsertCommand, MoveCommand, ClearCommand: list mutations
// - Manager: the undo/redo stacks and the Idle/Batching state machine
//
// Commands never reference the manager that applies them.
package undo

// Command is one reversible mutation of its Sender.
//
// Calling Redo and then Undo must leave the sender observably identical to its
// state before Redo, however many times the pair is replayed.
type Command interface {
	// Sender returns the object this command mutates.
	Sender() any
	// Undo reverts the mutation.
	Undo()
	// Redo (re)applies the mutation.
	Redo()
}

// Batch is an ordered list of commands undone and redone as a single step.
type Batch []Command

// redo applies every command in forward order.
func (b Batch) redo() {
	for _, c := range b {
		c.Redo()
	}
}

// undo reverts every command in reverse order.
func (b Batch) undo() {
	for i := len(b) - 1; i >= 0; i-- {
		b[i].Undo()
	}
}

// Senders returns the distinct senders touched by the batch, in first-seen order.
func (b Batch) Senders() []any {
	var out []any
	seen := make(map[any]bool)
	for _, c := range b {
		s := c.Sender()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
