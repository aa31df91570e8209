// Package etcdcoord shares RatchetPool cooldown state across a
// replicated index-server fleet: instead of each replica tracking a
// peer's cooldown purely in its own process memory (as
// indexverifier.RatchetPool does locally), a lease-backed etcd key
// lets every replica in the cluster see the same "still in cooldown"
// state for a node, so a session switch rejected on one replica is
// rejected on all of them. This is the same etcd client the teacher
// repo pulls in for its own clustered leader-election / replicated
// channel.db deployment mode, repurposed here for a much smaller piece
// of shared state.
package etcdcoord

import (
	"context"
	"encoding/hex"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Coordinator shares cooldown markers for indexverifier.RatchetPool
// entries across a cluster of index servers via etcd leases.
type Coordinator struct {
	cli    *clientv3.Client
	prefix string
}

// Dial connects to the given etcd endpoints and returns a Coordinator
// that namespaces its keys under prefix.
func Dial(endpoints []string, dialTimeout time.Duration, prefix string) (*Coordinator, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, err
	}
	return New(cli, prefix), nil
}

// New wraps an already-constructed etcd client.
func New(cli *clientv3.Client, prefix string) *Coordinator {
	return &Coordinator{cli: cli, prefix: prefix}
}

// Close releases the underlying etcd client.
func (c *Coordinator) Close() error {
	return c.cli.Close()
}

func (c *Coordinator) key(node [32]byte) string {
	return c.prefix + hex.EncodeToString(node[:])
}

// MarkCooldown publishes a lease-backed marker for node that expires
// after ttl, visible to every replica sharing this etcd cluster.
func (c *Coordinator) MarkCooldown(ctx context.Context, node [32]byte, ttl time.Duration) error {
	lease, err := c.cli.Grant(ctx, int64(ttl/time.Second))
	if err != nil {
		return err
	}
	_, err = c.cli.Put(ctx, c.key(node), "", clientv3.WithLease(lease.ID))
	return err
}

// IsInCooldown reports whether some replica has published a still-live
// cooldown marker for node.
func (c *Coordinator) IsInCooldown(ctx context.Context, node [32]byte) (bool, error) {
	resp, err := c.cli.Get(ctx, c.key(node))
	if err != nil {
		return false, err
	}
	return resp.Count > 0, nil
}

// ClearCooldown removes node's marker early, e.g. once its RatchetPool
// entry has aged out locally on the replica that owns it.
func (c *Coordinator) ClearCooldown(ctx context.Context, node [32]byte) error {
	_, err := c.cli.Delete(ctx, c.key(node))
	return err
}
