package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/storage/api"
	"github.com/cryptogopniks/GopStake/storage/tests"
)

func TestMemoryBackend(t *testing.T) {
	backend := New()
	defer backend.Close()

	tests.StorageImplementationTests(t, backend)
}

func TestSnapshotIsolation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	backend := New()
	reader, err := backend.NewTransaction(ctx, false)
	require.NoError(err)
	defer reader.Discard()

	writer, err := backend.NewTransaction(ctx, true)
	require.NoError(err)
	require.NoError(writer.Set([]byte("k"), []byte("v")))
	require.NoError(writer.Commit(ctx))

	v, err := reader.Get([]byte("k"))
	require.NoError(err)
	require.Nil(v, "earlier snapshot does not observe later commits")

	backend.Close()
	_, err = backend.NewTransaction(ctx, true)
	require.ErrorIs(err, api.ErrClosed)
}
