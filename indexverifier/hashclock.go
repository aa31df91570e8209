// Package indexverifier implements §4.7: an index server accepts a
// gossiped MutationsUpdate only if its expansion_chain proves the
// message derives from a tick hash still within the local HashClock's
// ring buffer, and only if the per-peer (session_id, counter) Ratchet
// confirms it isn't a replay. Together these bound gossip freshness
// without requiring a shared clock across the index-server mesh.
package indexverifier

import "github.com/creditmesh/corenet/ccrypto"

var domainHashClock = ccrypto.Hash256([]byte("HASH_CLOCK"))

// hashHashes combines a list of hashes into one, matching the Rust
// source's hash_hashes: sha("HASH_CLOCK") ∥ hash0 ∥ hash1 ∥ ... hashed
// together as a single buffer.
func hashHashes(hashes [][32]byte) [32]byte {
	parts := make([][]byte, 0, len(hashes)+1)
	dom := domainHashClock
	parts = append(parts, dom[:])
	for i := range hashes {
		parts = append(parts, hashes[i][:])
	}
	return ccrypto.Hash256(parts...)
}

// HashClock is one index server's view of "recent enough": it folds its
// neighbors' latest reported tick hashes together with a fresh random
// value on every Tick, and keeps a bounded ring buffer of the tick
// hashes it has produced so it can later confirm that a neighbor's
// expansion_chain traces back to one of them.
type HashClock struct {
	neighborHashes map[[32]byte][32]byte

	ticksMaxLen int
	lastTicks   [][32]byte
	ticksByHash map[[32]byte][][32]byte
}

// NewHashClock builds a HashClock retaining the last ticksMaxLen tick
// hashes it has produced.
func NewHashClock(ticksMaxLen int) *HashClock {
	if ticksMaxLen <= 0 {
		ticksMaxLen = 1
	}
	return &HashClock{
		neighborHashes: make(map[[32]byte][32]byte),
		ticksMaxLen:    ticksMaxLen,
		ticksByHash:    make(map[[32]byte][][32]byte),
	}
}

// UpdateNeighborHash records the latest tick hash reported by neighbor,
// returning whatever was previously on file for it.
func (c *HashClock) UpdateNeighborHash(neighbor [32]byte, tickHash [32]byte) ([32]byte, bool) {
	prev, had := c.neighborHashes[neighbor]
	c.neighborHashes[neighbor] = tickHash
	return prev, had
}

// RemoveNeighbor drops whatever tick hash is on file for neighbor, e.g.
// once it's no longer peered with this server.
func (c *HashClock) RemoveNeighbor(neighbor [32]byte) ([32]byte, bool) {
	prev, had := c.neighborHashes[neighbor]
	delete(c.neighborHashes, neighbor)
	return prev, had
}

// Tick folds sha(randValue) together with every neighbor's latest
// reported hash into a new tick hash, remembers its expansion (the flat
// list of hashes that produced it) for later proof verification, and
// returns the tick hash to gossip onward.
func (c *HashClock) Tick(randValue [32]byte) [32]byte {
	hashedRand := ccrypto.Hash256(randValue[:])

	hashes := make([][32]byte, 0, len(c.neighborHashes)+1)
	hashes = append(hashes, hashedRand)
	for _, h := range c.neighborHashes {
		hashes = append(hashes, h)
	}

	tickHash := hashHashes(hashes)
	c.insertTick(tickHash, hashes)
	return tickHash
}

func (c *HashClock) insertTick(tickHash [32]byte, expansion [][32]byte) {
	c.lastTicks = append(c.lastTicks, tickHash)
	if len(c.lastTicks) > c.ticksMaxLen {
		popped := c.lastTicks[0]
		c.lastTicks = c.lastTicks[1:]
		delete(c.ticksByHash, popped)
	}
	c.ticksByHash[tickHash] = expansion
}

// Expansion returns the flat hash list that produced tickHash, if it's
// still within the ring buffer — the "hash proof" a neighbor attaches
// to outgoing gossip so others can verify it traces back here.
func (c *HashClock) Expansion(tickHash [32]byte) ([][32]byte, bool) {
	exp, ok := c.ticksByHash[tickHash]
	return exp, ok
}

// VerifyExpansionChain walks chain, confirming each link's hash_hashes
// is contained in the list before it (starting from originTickHash),
// and that the final list contains a hash still in this server's ring
// buffer. Returns that local tick hash on success.
func (c *HashClock) VerifyExpansionChain(originTickHash [32]byte, chain [][][32]byte) ([32]byte, bool) {
	prev := [][32]byte{originTickHash}

	for _, list := range chain {
		h := hashHashes(list)
		if !containsHash(prev, h) {
			return [32]byte{}, false
		}
		prev = list
	}

	for _, h := range prev {
		if _, ok := c.ticksByHash[h]; ok {
			return h, true
		}
	}
	return [32]byte{}, false
}

func containsHash(list [][32]byte, h [32]byte) bool {
	for _, x := range list {
		if x == h {
			return true
		}
	}
	return false
}
