package models

import "errors"

// Sentinel errors shared by both store adapters and the services on top of
// them. Use errors.Is() to classify failures in calling code.
var (
	// ErrDimensionMismatch indicates an embedding whose length does not
	// match the configured index dimension. Fatal, never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidArgument indicates malformed request parameters (e.g. a
	// non-positive result limit). Fatal, surfaced to the caller.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTimeout indicates a downstream adapter call exceeded its budget.
	// Retryable: all adapter operations are idempotent or read-only.
	ErrTimeout = errors.New("operation timed out")

	// ErrEntityNotFound indicates a timeline or trend lookup for an entity
	// with zero presence in the graph.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrStoreUnavailable indicates the adapter cannot reach its backing
	// store. Fatal for the current request; state is never corrupted since
	// all writes are upserts.
	ErrStoreUnavailable = errors.New("store unavailable")
)
