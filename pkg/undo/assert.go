//go:build !undodebug

package undo

// strict turns precondition violations inside commands into panics. Build
// with -tags undodebug to enable it.
const strict = false
