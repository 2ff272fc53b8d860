package util

import "errors"

// Sentinel errors for command-line failure modes
var (
	// ErrNotFound indicates a requested project or spectrum was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration or flag values
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupported indicates an output format that is not supported
	ErrUnsupported = errors.New("unsupported")
)
