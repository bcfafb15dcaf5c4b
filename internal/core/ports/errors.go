package ports

import "errors"

var (
	// ErrNotFound is returned by a KVStore when nothing is stored under a key.
	ErrNotFound = errors.New("jobtrack: not found")

	// ErrInvalidKey is returned for keys with empty segments or path traversal.
	ErrInvalidKey = errors.New("jobtrack: invalid key")

	// ErrStoreClosed is returned by backends after Close.
	ErrStoreClosed = errors.New("jobtrack: store closed")
)
