//go:build undodebug

package undo

const strict = true
