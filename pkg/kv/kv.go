// Package kv is the small key-value surface behind conversation
// persistence. Keys are flat strings; related records share a common
// prefix (e.g. "conv:<userID>:") and are enumerated with List.
//
// Two implementations are provided: a BadgerDB-backed store for real use
// and an in-memory store for tests.
package kv

import (
	"context"
	"errors"
	"iter"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Entry is a key-value pair yielded by List.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a minimal key-value store.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List iterates over entries whose key starts with prefix, in
	// lexicographic key order. An empty prefix scans everything.
	List(ctx context.Context, prefix string) iter.Seq2[Entry, error]

	// Close releases resources held by the store.
	Close() error
}
