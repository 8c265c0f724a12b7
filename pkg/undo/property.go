package undo

import "fmt"

// Value is the new value of a PropertyChange: either a literal known at
// construction time, or a deferred computation evaluated when the command is
// applied.
type Value[T any] struct {
	literal T
	thunk   func() T
}

// Literal wraps a value known at construction time.
func Literal[T any](v T) Value[T] {
	return Value[T]{literal: v}
}

// Deferred wraps a computation evaluated at Redo time, after earlier commands
// of the same batch have been applied.
func Deferred[T any](fn func() T) Value[T] {
	if fn == nil {
		panic("undo: Deferred called with a nil function")
	}
	return Value[T]{thunk: fn}
}

// IsDeferred reports whether the value is computed at apply time.
func (v Value[T]) IsDeferred() bool { return v.thunk != nil }

// Resolve returns the literal or evaluates the deferred computation.
func (v Value[T]) Resolve() T {
	if v.thunk != nil {
		return v.thunk()
	}
	return v.literal
}

// Property is a typed selector for one field of an object.
type Property[T any] struct {
	Name string
	Get  func() T
	Set  func(T)
}

// PropertyChange assigns a new value to a single property.
type PropertyChange[T any] struct {
	sender any
	prop   Property[T]
	old    T
	value  Value[T]
}

// NewPropertyChange builds a property assignment on sender. The current value
// is captured immediately as the value restored by Undo.
//
// A property without a getter or setter cannot be changed; this is a
// construction bug and panics.
func NewPropertyChange[T any](sender any, prop Property[T], value Value[T]) *PropertyChange[T] {
	if prop.Get == nil || prop.Set == nil {
		panic(fmt.Sprintf("undo: property %q on %T has no getter or setter", prop.Name, sender))
	}
	return &PropertyChange[T]{
		sender: sender,
		prop:   prop,
		old:    prop.Get(),
		value:  value,
	}
}

// Sender returns the object owning the property.
func (c *PropertyChange[T]) Sender() any { return c.sender }

// Name returns the property name.
func (c *PropertyChange[T]) Name() string { return c.prop.Name }

// Old returns the value Undo restores.
func (c *PropertyChange[T]) Old() T { return c.old }

// Value returns the new value description.
func (c *PropertyChange[T]) Value() Value[T] { return c.value }

// Redo records the value in place right before assignment, then assigns the
// resolved new value. Re-capturing keeps replay strict when an earlier command
// of the same batch touched the same property.
func (c *PropertyChange[T]) Redo() {
	c.old = c.prop.Get()
	c.prop.Set(c.value.Resolve())
}

// Undo restores the recorded value.
func (c *PropertyChange[T]) Undo() {
	c.prop.Set(c.old)
}

func (c *PropertyChange[T]) String() string {
	return fmt.Sprintf("set %s on %v", c.prop.Name, c.sender)
}
