package undo

// ListHooks are callbacks invoked after each primitive change of a List.
// Either hook may be nil.
type ListHooks[T comparable] struct {
	Inserted func(index int, item T)
	Removed  func(index int, item T)
}

// List is an ordered collection whose items are compared by identity (==).
// Order is significant. The zero value is an empty list without hooks.
type List[T comparable] struct {
	items []T
	hooks ListHooks[T]
}

// NewList returns a list holding items in order.
func NewList[T comparable](items ...T) *List[T] {
	l := &List[T]{}
	l.items = append(l.items, items...)
	return l
}

// SetHooks installs the change hooks, replacing any previous ones.
func (l *List[T]) SetHooks(h ListHooks[T]) { l.hooks = h }

// Len returns the number of items.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the item at index i.
func (l *List[T]) At(i int) T { return l.items[i] }

// Items returns a copy of the items in order.
func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// IndexOf returns the first index of item, or -1.
func (l *List[T]) IndexOf(item T) int {
	for i, v := range l.items {
		if v == item {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the last index of item, or -1.
func (l *List[T]) LastIndexOf(item T) int {
	for i := len(l.items) - 1; i >= 0; i-- {
		if l.items[i] == item {
			return i
		}
	}
	return -1
}

// Contains reports whether item is in the list.
func (l *List[T]) Contains(item T) bool { return l.IndexOf(item) >= 0 }

// Append adds items at the end.
func (l *List[T]) Append(items ...T) {
	for _, item := range items {
		l.Insert(len(l.items), item)
	}
}

// Insert places item at index, shifting later items. Index len(l) appends.
func (l *List[T]) Insert(index int, item T) {
	if index < 0 || index > len(l.items) {
		panic("undo: List.Insert index out of range")
	}
	var zero T
	l.items = append(l.items, zero)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = item
	if l.hooks.Inserted != nil {
		l.hooks.Inserted(index, item)
	}
}

// RemoveAt removes and returns the item at index.
func (l *List[T]) RemoveAt(index int) T {
	item := l.items[index]
	copy(l.items[index:], l.items[index+1:])
	var zero T
	l.items[len(l.items)-1] = zero
	l.items = l.items[:len(l.items)-1]
	if l.hooks.Removed != nil {
		l.hooks.Removed(index, item)
	}
	return item
}

// Remove deletes the first occurrence of item and reports whether it was found.
func (l *List[T]) Remove(item T) bool {
	i := l.IndexOf(item)
	if i < 0 {
		return false
	}
	l.RemoveAt(i)
	return true
}

// Move relocates the item at from so that it ends up at index to.
func (l *List[T]) Move(from, to int) {
	if from == to {
		return
	}
	item := l.RemoveAt(from)
	l.Insert(to, item)
}

// Clear removes every item, last first, and returns the prior contents.
func (l *List[T]) Clear() []T {
	prior := l.Items()
	for i := len(l.items) - 1; i >= 0; i-- {
		l.RemoveAt(i)
	}
	return prior
}
