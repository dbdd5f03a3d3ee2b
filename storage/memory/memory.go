// Package memory implements an in-memory storage backend.
//
// Every transaction works on a copy-on-write clone of the tree, so a
// discarded transaction leaves no trace and readers observe a consistent
// snapshot.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/storage/api"
)

const btreeDegree = 16

var _ api.Backend = (*memoryBackend)(nil)

type item struct {
	key   []byte
	value []byte
}

func (i *item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(*item).key) < 0
}

type memoryBackend struct {
	sync.Mutex

	logger *logging.Logger

	// writeLock serializes writable transactions.
	writeLock sync.Mutex
	tree      *btree.BTree
	closed    bool
}

func (b *memoryBackend) NewTransaction(ctx context.Context, writable bool) (api.Transaction, error) {
	if writable {
		b.writeLock.Lock()
	}

	// Clone updates the copy-on-write context of the source tree.
	b.Lock()
	defer b.Unlock()

	if b.closed {
		if writable {
			b.writeLock.Unlock()
		}
		return nil, api.ErrClosed
	}
	return &memoryTx{
		backend:  b,
		tree:     b.tree.Clone(),
		writable: writable,
	}, nil
}

func (b *memoryBackend) Close() {
	b.Lock()
	defer b.Unlock()

	b.closed = true
}

type memoryTx struct {
	backend  *memoryBackend
	tree     *btree.BTree
	writable bool
	done     bool
}

func (tx *memoryTx) Get(key []byte) ([]byte, error) {
	if tx.done {
		return nil, api.ErrClosed
	}
	found := tx.tree.Get(&item{key: key})
	if found == nil {
		return nil, nil
	}
	return append([]byte{}, found.(*item).value...), nil
}

func (tx *memoryTx) NewIterator(prefix []byte) api.Iterator {
	it := &memoryIterator{}
	if tx.done {
		it.err = api.ErrClosed
		return it
	}
	tx.tree.AscendGreaterOrEqual(&item{key: prefix}, func(i btree.Item) bool {
		kv := i.(*item)
		if !bytes.HasPrefix(kv.key, prefix) {
			return false
		}
		it.items = append(it.items, kv)
		return true
	})
	return it
}

func (tx *memoryTx) Set(key, value []byte) error {
	switch {
	case tx.done:
		return api.ErrClosed
	case !tx.writable:
		return api.ErrReadOnly
	}
	tx.tree.ReplaceOrInsert(&item{
		key:   append([]byte{}, key...),
		value: append([]byte{}, value...),
	})
	return nil
}

func (tx *memoryTx) Delete(key []byte) error {
	switch {
	case tx.done:
		return api.ErrClosed
	case !tx.writable:
		return api.ErrReadOnly
	}
	tx.tree.Delete(&item{key: key})
	return nil
}

func (tx *memoryTx) Commit(ctx context.Context) error {
	if tx.done {
		return api.ErrClosed
	}
	if !tx.writable {
		tx.Discard()
		return nil
	}

	b := tx.backend
	b.Lock()
	closed := b.closed
	if !closed {
		b.tree = tx.tree
	}
	b.Unlock()

	tx.finish()
	if closed {
		return api.ErrClosed
	}
	return nil
}

func (tx *memoryTx) Discard() {
	if tx.done {
		return
	}
	tx.finish()
}

func (tx *memoryTx) finish() {
	tx.done = true
	tx.tree = nil
	if tx.writable {
		tx.backend.writeLock.Unlock()
	}
}

type memoryIterator struct {
	items []*item
	pos   int
	err   error
}

func (it *memoryIterator) Valid() bool {
	return it.err == nil && it.pos < len(it.items)
}

func (it *memoryIterator) Next() {
	it.pos++
}

func (it *memoryIterator) Key() []byte {
	return it.items[it.pos].key
}

func (it *memoryIterator) Value() []byte {
	return it.items[it.pos].value
}

func (it *memoryIterator) Err() error {
	return it.err
}

func (it *memoryIterator) Close() {
	it.items = nil
}

// New creates a new in-memory storage backend.
func New() api.Backend {
	logger := logging.GetLogger("storage/memory")
	logger.Debug("created in-memory backend")

	return &memoryBackend{
		logger: logger,
		tree:   btree.New(btreeDegree),
	}
}
