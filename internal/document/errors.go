package document

import "errors"

// Declined operations return one of these, wrapped with context. None of them
// leave the store modified.
var (
	ErrNotFound    = errors.New("block not found")
	ErrNoSelection = errors.New("no active selection")
	ErrBoundary    = errors.New("caret not at a mergeable boundary")
	ErrInvalidType = errors.New("invalid element type")
)
