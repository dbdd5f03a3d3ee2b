// Package badger implements a persistent storage backend on top of
// BadgerDB.
package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	cmnBadger "github.com/cryptogopniks/GopStake/common/badger"
	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/storage/api"
)

var _ api.Backend = (*badgerBackend)(nil)

// Config is the badger backend configuration.
type Config struct {
	// Dir is the database directory. An empty directory opens an
	// ephemeral in-memory database.
	Dir string
	// GCInterval is the value log GC interval, zero selects the default.
	GCInterval time.Duration
}

type badgerBackend struct {
	logger *logging.Logger

	db *badger.DB
	gc *cmnBadger.GCWorker
}

func (b *badgerBackend) NewTransaction(ctx context.Context, writable bool) (api.Transaction, error) {
	if b.db.IsClosed() {
		return nil, api.ErrClosed
	}
	return &badgerTx{
		txn:      b.db.NewTransaction(writable),
		writable: writable,
	}, nil
}

func (b *badgerBackend) Close() {
	if b.gc != nil {
		b.gc.Close()
	}
	if err := b.db.Close(); err != nil {
		b.logger.Error("failed to close database",
			"err", err,
		)
	}
}

type badgerTx struct {
	txn      *badger.Txn
	writable bool
	done     bool
}

func (tx *badgerTx) Get(key []byte) ([]byte, error) {
	if tx.done {
		return nil, api.ErrClosed
	}
	item, err := tx.txn.Get(key)
	switch err {
	case nil:
	case badger.ErrKeyNotFound:
		return nil, nil
	default:
		return nil, errors.Wrap(err, "storage/badger: get")
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, errors.Wrap(err, "storage/badger: value copy")
	}
	return value, nil
}

func (tx *badgerTx) NewIterator(prefix []byte) api.Iterator {
	if tx.done {
		return &badgerIterator{err: api.ErrClosed}
	}
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := &badgerIterator{
		inner: tx.txn.NewIterator(opts),
	}
	it.inner.Seek(prefix)
	it.load()
	return it
}

func (tx *badgerTx) Set(key, value []byte) error {
	switch {
	case tx.done:
		return api.ErrClosed
	case !tx.writable:
		return api.ErrReadOnly
	}
	return errors.Wrap(tx.txn.Set(key, value), "storage/badger: set")
}

func (tx *badgerTx) Delete(key []byte) error {
	switch {
	case tx.done:
		return api.ErrClosed
	case !tx.writable:
		return api.ErrReadOnly
	}
	return errors.Wrap(tx.txn.Delete(key), "storage/badger: delete")
}

func (tx *badgerTx) Commit(ctx context.Context) error {
	if tx.done {
		return api.ErrClosed
	}
	tx.done = true
	if !tx.writable {
		tx.txn.Discard()
		return nil
	}

	err := tx.txn.Commit()
	switch err {
	case nil:
		return nil
	case badger.ErrConflict:
		return api.ErrConflict
	default:
		return errors.Wrap(err, "storage/badger: commit")
	}
}

func (tx *badgerTx) Discard() {
	if tx.done {
		return
	}
	tx.done = true
	tx.txn.Discard()
}

type badgerIterator struct {
	inner *badger.Iterator
	key   []byte
	value []byte
	err   error
}

func (it *badgerIterator) load() {
	it.key, it.value = nil, nil
	if it.inner == nil || !it.inner.Valid() {
		return
	}
	item := it.inner.Item()
	it.key = item.KeyCopy(nil)
	if it.value, it.err = item.ValueCopy(nil); it.err != nil {
		it.err = errors.Wrap(it.err, "storage/badger: iterator value copy")
	}
}

func (it *badgerIterator) Valid() bool {
	return it.err == nil && it.inner != nil && it.inner.Valid()
}

func (it *badgerIterator) Next() {
	it.inner.Next()
	it.load()
}

func (it *badgerIterator) Key() []byte {
	return it.key
}

func (it *badgerIterator) Value() []byte {
	return it.value
}

func (it *badgerIterator) Err() error {
	return it.err
}

func (it *badgerIterator) Close() {
	if it.inner != nil {
		it.inner.Close()
		it.inner = nil
	}
}

// New opens a badger storage backend.
func New(cfg *Config) (api.Backend, error) {
	logger := logging.GetLogger("storage/badger")

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(cmnBadger.NewLogAdapter(logger))

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "storage/badger: failed to open database")
	}

	b := &badgerBackend{
		logger: logger,
		db:     db,
	}
	if cfg.Dir != "" {
		b.gc = cmnBadger.NewGCWorker(logger, db, cfg.GCInterval)
	}

	logger.Info("opened database",
		"dir", cfg.Dir,
	)
	return b, nil
}
