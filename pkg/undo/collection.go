package undo

import "fmt"

func violation(format string, args ...any) {
	if strict {
		panic(fmt.Sprintf("undo: "+format, args...))
	}
}

// AddCommand appends items to a list.
type AddCommand[T comparable] struct {
	list  *List[T]
	items []T
}

// Add returns a command appending items to list.
func Add[T comparable](list *List[T], items ...T) *AddCommand[T] {
	return &AddCommand[T]{list: list, items: append([]T(nil), items...)}
}

func (c *AddCommand[T]) Sender() any { return c.list }

func (c *AddCommand[T]) Redo() { c.list.Append(c.items...) }

// Undo removes exactly the appended items, matching the last occurrence of each
// so earlier duplicates stay in place.
func (c *AddCommand[T]) Undo() {
	for i := len(c.items) - 1; i >= 0; i-- {
		idx := c.list.LastIndexOf(c.items[i])
		if idx < 0 {
			violation("add undo: item %v not in list", c.items[i])
			continue
		}
		c.list.RemoveAt(idx)
	}
}

// RemoveCommand removes items from a list and puts them back at their original
// positions on undo.
type RemoveCommand[T comparable] struct {
	list    *List[T]
	items   []T
	indices []int
}

// Remove returns a command removing the first occurrence of each item.
func Remove[T comparable](list *List[T], items ...T) *RemoveCommand[T] {
	return &RemoveCommand[T]{list: list, items: append([]T(nil), items...)}
}

func (c *RemoveCommand[T]) Sender() any { return c.list }

func (c *RemoveCommand[T]) Redo() {
	c.indices = c.indices[:0]
	for _, item := range c.items {
		idx := c.list.IndexOf(item)
		if idx < 0 {
			violation("remove: item %v not in list", item)
		} else {
			c.list.RemoveAt(idx)
		}
		c.indices = append(c.indices, idx)
	}
}

func (c *RemoveCommand[T]) Undo() {
	for i := len(c.indices) - 1; i >= 0; i-- {
		idx := c.indices[i]
		if idx < 0 {
			continue
		}
		if idx > c.list.Len() {
			violation("remove undo: index %d beyond length %d", idx, c.list.Len())
			idx = c.list.Len()
		}
		c.list.Insert(idx, c.items[i])
	}
}

// InsertCommand places one item at a fixed index.
type InsertCommand[T comparable] struct {
	list    *List[T]
	index   int
	item    T
	applied bool
}

// Insert returns a command inserting item at index.
func Insert[T comparable](list *List[T], index int, item T) *InsertCommand[T] {
	return &InsertCommand[T]{list: list, index: index, item: item}
}

func (c *InsertCommand[T]) Sender() any { return c.list }

func (c *InsertCommand[T]) Redo() {
	c.applied = false
	if c.index < 0 || c.index > c.list.Len() {
		violation("insert: index %d out of range [0,%d]", c.index, c.list.Len())
		return
	}
	c.list.Insert(c.index, c.item)
	c.applied = true
}

func (c *InsertCommand[T]) Undo() {
	if !c.applied {
		return
	}
	if c.index >= c.list.Len() || c.list.At(c.index) != c.item {
		violation("insert undo: item %v no longer at %d", c.item, c.index)
		return
	}
	c.list.RemoveAt(c.index)
	c.applied = false
}

// MoveCommand relocates one item inside a list.
type MoveCommand[T comparable] struct {
	list     *List[T]
	from, to int
}

// Move returns a command moving the item at from to index to.
func Move[T comparable](list *List[T], from, to int) *MoveCommand[T] {
	return &MoveCommand[T]{list: list, from: from, to: to}
}

func (c *MoveCommand[T]) Sender() any { return c.list }

func (c *MoveCommand[T]) valid() bool {
	n := c.list.Len()
	return c.from >= 0 && c.from < n && c.to >= 0 && c.to < n
}

func (c *MoveCommand[T]) Redo() {
	if !c.valid() {
		violation("move: %d -> %d out of range", c.from, c.to)
		return
	}
	c.list.Move(c.from, c.to)
}

func (c *MoveCommand[T]) Undo() {
	if !c.valid() {
		violation("move undo: %d -> %d out of range", c.to, c.from)
		return
	}
	c.list.Move(c.to, c.from)
}

// ClearCommand empties a list and restores its full prior contents on undo.
type ClearCommand[T comparable] struct {
	list  *List[T]
	prior []T
}

// Clear returns a command emptying list. The current contents are captured
// now and captured again on every Redo.
func Clear[T comparable](list *List[T]) *ClearCommand[T] {
	return &ClearCommand[T]{list: list, prior: list.Items()}
}

func (c *ClearCommand[T]) Sender() any { return c.list }

// Prior returns the contents Undo restores.
func (c *ClearCommand[T]) Prior() []T { return append([]T(nil), c.prior...) }

func (c *ClearCommand[T]) Redo() { c.prior = c.list.Clear() }

func (c *ClearCommand[T]) Undo() {
	if c.list.Len() != 0 {
		violation("clear undo: list not empty (%d items)", c.list.Len())
	}
	c.list.Append(c.prior...)
}
