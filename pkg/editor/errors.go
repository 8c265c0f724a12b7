package editor

import "errors"

// Structure errors
var (
	// ErrInvalidTree indicates a tree that breaks the document invariants.
	ErrInvalidTree = errors.New("invalid node tree")

	// ErrIncompatibleParent indicates a node placed under a parent type that
	// cannot contain it.
	ErrIncompatibleParent = errors.New("incompatible parent type")

	// ErrNotInDocument indicates a node that is not indexed by the document.
	ErrNotInDocument = errors.New("node is not part of the document")

	// ErrRootNode indicates an operation that cannot target the page node.
	ErrRootNode = errors.New("operation not allowed on the page node")

	// ErrCycle indicates a move of a node below itself.
	ErrCycle = errors.New("node cannot be moved below itself")
)

// Operation errors
var (
	// ErrNoNodes indicates an operation called without target nodes.
	ErrNoNodes = errors.New("no nodes given")

	// ErrMixedTypes indicates a merge of nodes with different types.
	ErrMixedTypes = errors.New("nodes have different types")

	// ErrTooFewNodes indicates a merge of fewer than two nodes.
	ErrTooFewNodes = errors.New("merge needs at least two nodes")

	// ErrNotAWord indicates a word-only operation on another node type.
	ErrNotAWord = errors.New("node is not a word")

	// ErrInvalidOffset indicates a split offset outside the word box.
	ErrInvalidOffset = errors.New("split offset outside the node box")

	// ErrEmptyClipboard indicates a paste without copied nodes.
	ErrEmptyClipboard = errors.New("clipboard is empty")

	// ErrParentGone indicates a paste whose original parent was removed and
	// no compatible node is selected.
	ErrParentGone = errors.New("original parent no longer exists")

	// ErrInvalidIndex indicates a child index out of range.
	ErrInvalidIndex = errors.New("index out of range")

	// ErrWordCount indicates replacement text whose word count differs from
	// the target's.
	ErrWordCount = errors.New("word count mismatch")

	// ErrAttached indicates a subtree that is already part of a document.
	ErrAttached = errors.New("node is already attached")
)
