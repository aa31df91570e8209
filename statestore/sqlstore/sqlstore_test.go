package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/creditmesh/corenet/asyncrpc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "state.db")
	store, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testNodePK(b byte) [32]byte {
	var pk [32]byte
	pk[0] = b
	return pk
}

func TestLoadStateOnMissingNodeReturnsErrNotFound(t *testing.T) {
	store := openTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err := store.LoadState(ctx, testNodePK(1))
	require.ErrorIs(t, err, asyncrpc.ErrNotFound)
}

func TestApplyBatchThenLoadStateRoundTrips(t *testing.T) {
	store := openTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	node := testNodePK(7)
	blob := []byte("friends-map-and-pending-queues")

	require.NoError(t, store.ApplyBatch(ctx, node, blob, 3))

	got, version, err := store.LoadState(ctx, node)
	require.NoError(t, err)
	require.Equal(t, byte(3), version)
	require.Equal(t, blob, got)
}

func TestApplyBatchOverwritesPriorBlob(t *testing.T) {
	store := openTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	node := testNodePK(9)
	require.NoError(t, store.ApplyBatch(ctx, node, []byte("first batch"), 1))
	require.NoError(t, store.ApplyBatch(ctx, node, []byte("second batch"), 2))

	got, version, err := store.LoadState(ctx, node)
	require.NoError(t, err)
	require.Equal(t, byte(2), version)
	require.Equal(t, []byte("second batch"), got)
}

func TestDistinctNodesAreIsolated(t *testing.T) {
	store := openTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, b := testNodePK(1), testNodePK(2)
	require.NoError(t, store.ApplyBatch(ctx, a, []byte("node a state"), 1))

	_, _, err := store.LoadState(ctx, b)
	require.ErrorIs(t, err, asyncrpc.ErrNotFound)

	got, _, err := store.LoadState(ctx, a)
	require.NoError(t, err)
	require.Equal(t, []byte("node a state"), got)
}

func TestOpenIsIdempotentAcrossReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "state.db")

	store1, err := Open(dsn)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	node := testNodePK(4)
	require.NoError(t, store1.ApplyBatch(ctx, node, []byte("persisted"), 1))
	require.NoError(t, store1.Close())

	store2, err := Open(dsn)
	require.NoError(t, err)
	defer store2.Close()

	got, version, err := store2.LoadState(ctx, node)
	require.NoError(t, err)
	require.Equal(t, byte(1), version)
	require.Equal(t, []byte("persisted"), got)
}
