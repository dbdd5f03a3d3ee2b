// Package api defines the transactional key-value storage interface used by
// the ledger state.
package api

import (
	"context"

	"github.com/cryptogopniks/GopStake/common/errors"
)

// ModuleName is the storage module name.
const ModuleName = "storage"

var (
	// ErrReadOnly is the error returned when mutating a read-only
	// transaction.
	ErrReadOnly = errors.New(ModuleName, 1, "storage: transaction is read-only")

	// ErrClosed is the error returned when using a finished transaction or
	// a closed backend.
	ErrClosed = errors.New(ModuleName, 2, "storage: closed")

	// ErrConflict is the error returned when a transaction could not be
	// committed due to a concurrent modification.
	ErrConflict = errors.New(ModuleName, 3, "storage: transaction conflict")
)

// Iterator iterates over keys sharing a prefix in ascending key order.
//
// An iterator must be closed before the transaction that created it is
// mutated, committed or discarded.
type Iterator interface {
	// Valid returns true iff the iterator is positioned at an entry.
	Valid() bool
	// Next advances the iterator.
	Next()
	// Key returns the current key.
	Key() []byte
	// Value returns the current value.
	Value() []byte
	// Err returns the first error encountered during iteration.
	Err() error
	// Close releases the iterator.
	Close()
}

// Reader is the read side of a transaction.
type Reader interface {
	// Get returns the value stored under key, or nil if there is none.
	Get(key []byte) ([]byte, error)
	// NewIterator returns an iterator over all keys with the given prefix.
	NewIterator(prefix []byte) Iterator
}

// Transaction is a staging overlay over the backend. Its writes become
// visible to other transactions only after a successful Commit.
type Transaction interface {
	Reader

	// Set stores value under key.
	Set(key, value []byte) error
	// Delete removes key.
	Delete(key []byte) error

	// Commit atomically applies all writes of the transaction.
	Commit(ctx context.Context) error
	// Discard drops all writes of the transaction. It is safe to call
	// Discard after Commit.
	Discard()
}

// Backend is a transactional key-value store.
type Backend interface {
	// NewTransaction opens a new transaction.
	NewTransaction(ctx context.Context, writable bool) (Transaction, error)
	// Close closes the backend.
	Close()
}
