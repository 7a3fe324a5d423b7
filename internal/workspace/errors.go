package workspace

import "errors"

// Workspace operation errors.
var (
	// ErrPathEscape is returned when a relative path normalizes outside the workspace root.
	ErrPathEscape = errors.New("path escapes workspace root")

	// ErrNotFound is returned when an operation target does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrIO is returned when an underlying storage operation fails.
	ErrIO = errors.New("storage operation failed")

	// ErrInvalidRange marks a line edit with an out-of-bounds or inverted range.
	// Soft: such edits are logged and skipped, never fatal to the surrounding operation.
	ErrInvalidRange = errors.New("invalid line range")
)
