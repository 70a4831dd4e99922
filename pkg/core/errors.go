package core

import "errors"

// Common errors.
var (
	// ErrNotFound is returned by KV.Get when the key holds no value.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidKey is returned by adapters for keys they cannot store.
	ErrInvalidKey = errors.New("invalid storage key")
)
