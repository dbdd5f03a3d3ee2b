// Package tests is a collection of storage backend implementation tests.
package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/storage/api"
)

// StorageImplementationTests exercises the basic functionality of a
// storage backend.
func StorageImplementationTests(t *testing.T, backend api.Backend) {
	t.Run("CommitDiscard", func(t *testing.T) {
		testCommitDiscard(t, backend)
	})
	t.Run("PrefixIteration", func(t *testing.T) {
		testPrefixIteration(t, backend)
	})
	t.Run("ReadOnly", func(t *testing.T) {
		testReadOnly(t, backend)
	})
}

func testCommitDiscard(t *testing.T, backend api.Backend) {
	require := require.New(t)
	ctx := context.Background()

	tx, err := backend.NewTransaction(ctx, true)
	require.NoError(err, "NewTransaction")
	require.NoError(tx.Set([]byte("a/1"), []byte("one")), "Set")
	v, err := tx.Get([]byte("a/1"))
	require.NoError(err, "Get")
	require.Equal([]byte("one"), v, "transaction observes its own writes")
	tx.Discard()

	tx, err = backend.NewTransaction(ctx, false)
	require.NoError(err, "NewTransaction")
	v, err = tx.Get([]byte("a/1"))
	require.NoError(err, "Get")
	require.Nil(v, "discarded writes are not visible")
	tx.Discard()

	tx, err = backend.NewTransaction(ctx, true)
	require.NoError(err, "NewTransaction")
	require.NoError(tx.Set([]byte("a/1"), []byte("one")), "Set")
	require.NoError(tx.Set([]byte("a/2"), []byte("two")), "Set")
	require.NoError(tx.Commit(ctx), "Commit")
	tx.Discard()
	require.Error(tx.Set([]byte("a/3"), nil), "finished transaction rejects writes")

	tx, err = backend.NewTransaction(ctx, true)
	require.NoError(err, "NewTransaction")
	require.NoError(tx.Delete([]byte("a/2")), "Delete")
	v, err = tx.Get([]byte("a/2"))
	require.NoError(err, "Get")
	require.Nil(v, "deleted key in transaction")
	require.NoError(tx.Commit(ctx), "Commit")

	tx, err = backend.NewTransaction(ctx, false)
	require.NoError(err, "NewTransaction")
	defer tx.Discard()
	v, err = tx.Get([]byte("a/1"))
	require.NoError(err, "Get")
	require.Equal([]byte("one"), v, "committed value")
	v, err = tx.Get([]byte("a/2"))
	require.NoError(err, "Get")
	require.Nil(v, "committed delete")
}

func testPrefixIteration(t *testing.T, backend api.Backend) {
	require := require.New(t)
	ctx := context.Background()

	tx, err := backend.NewTransaction(ctx, true)
	require.NoError(err, "NewTransaction")
	for _, k := range []string{"p/c", "p/a", "q/a", "p/b", "o/z"} {
		require.NoError(tx.Set([]byte(k), []byte(k)), "Set")
	}
	require.NoError(tx.Commit(ctx), "Commit")

	tx, err = backend.NewTransaction(ctx, true)
	require.NoError(err, "NewTransaction")
	defer tx.Discard()
	require.NoError(tx.Set([]byte("p/ab"), []byte("p/ab")), "Set")

	it := tx.NewIterator([]byte("p/"))
	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
		require.Equal(it.Key(), it.Value(), "value matches key")
	}
	require.NoError(it.Err(), "iterator error")
	it.Close()
	require.Equal([]string{"p/a", "p/ab", "p/b", "p/c"}, keys, "ascending prefix iteration with pending writes")
}

func testReadOnly(t *testing.T, backend api.Backend) {
	require := require.New(t)
	ctx := context.Background()

	tx, err := backend.NewTransaction(ctx, false)
	require.NoError(err, "NewTransaction")
	defer tx.Discard()

	require.ErrorIs(tx.Set([]byte("x"), []byte("y")), api.ErrReadOnly, "Set on read-only transaction")
	require.ErrorIs(tx.Delete([]byte("x")), api.ErrReadOnly, "Delete on read-only transaction")
	require.NoError(tx.Commit(ctx), "Commit of read-only transaction")
}
