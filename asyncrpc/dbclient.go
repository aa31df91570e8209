package asyncrpc

import (
	"context"
	"errors"
)

// ErrNotFound is returned by DatabaseClient.LoadState when a node has no
// persisted state blob yet.
var ErrNotFound = errors.New("asyncrpc: no persisted state for node")

// DatabaseClient is the §6 persistence contract: one serialized state
// blob per node, tagged with a format-version byte, rewritten
// atomically on every accepted mutation batch. The router and token
// channel code depend only on this interface — never a concrete store —
// so statestore/{filestore,sqlstore,pgstore} are freely swappable, per
// §9's "no singletons" design note.
type DatabaseClient interface {
	// LoadState returns the last durably persisted blob and its format
	// version for nodePK, or ErrNotFound if none exists yet.
	LoadState(ctx context.Context, nodePK [32]byte) (blob []byte, version byte, err error)

	// ApplyBatch durably rewrites nodePK's state blob to newBlob tagged
	// with version. Per §5's ordering guarantee 3, callers must not
	// acknowledge the command that produced newBlob until this returns.
	ApplyBatch(ctx context.Context, nodePK [32]byte, newBlob []byte, version byte) error

	// Close releases any resources the implementation holds open.
	Close() error
}
