package tree

import "errors"

var (
	// ErrNotFound is returned when an operation that cannot silently no-op
	// references a node that does not exist.
	ErrNotFound = errors.New("node not found")

	// ErrInvalidMove is returned when a move would place a folder inside
	// itself or one of its own descendants.
	ErrInvalidMove = errors.New("cannot move a folder into itself")
)
