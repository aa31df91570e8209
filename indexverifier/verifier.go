package indexverifier

import (
	"crypto/rand"
	"io"
)

// Verifier ties a HashClock and a RatchetPool together, mirroring the
// original implementation's SimpleVerifier: Verify needs both a fresh
// enough expansion chain and a ratchet that confirms the message is new
// for its (node, session_id, counter).
type Verifier struct {
	clock   *HashClock
	ratchet *RatchetPool
}

// New builds a Verifier whose HashClock ring buffer and RatchetPool
// cooldown both span ticksToLive ticks, matching the original's single
// shared parameter.
func New(ticksToLive int) *Verifier {
	return &Verifier{
		clock:   NewHashClock(ticksToLive),
		ratchet: NewRatchetPool(ticksToLive),
	}
}

// Verify checks that a gossiped update is both recent (its
// expansionChain traces back to a tick hash still in this server's ring
// buffer) and not a replay (its (node, sessionID, counter) is new per
// the ratchet). On success it returns the hash expansion the caller
// should forward onward, extending expansionChain by one more link.
func (v *Verifier) Verify(originTickHash [32]byte, expansionChain [][][32]byte, node [32]byte, sessionID [16]byte, counter uint64) ([][32]byte, bool) {
	tickHash, ok := v.clock.VerifyExpansionChain(originTickHash, expansionChain)
	if !ok {
		return nil, false
	}

	if !v.ratchet.Update(node, sessionID, counter) {
		return nil, false
	}

	return v.clock.Expansion(tickHash)
}

// Tick advances this server's own HashClock by one (folding in a fresh
// random value) and ages the ratchet pool, returning the new tick hash
// to gossip onward plus whichever peers just aged out of the ratchet
// pool.
func (v *Verifier) Tick() ([32]byte, [][32]byte, error) {
	var randValue [32]byte
	if _, err := io.ReadFull(rand.Reader, randValue[:]); err != nil {
		return [32]byte{}, nil, err
	}
	tickHash := v.clock.Tick(randValue)
	removed := v.ratchet.Tick()
	return tickHash, removed, nil
}

// NeighborTick records a neighbor's freshly reported tick hash.
func (v *Verifier) NeighborTick(neighbor [32]byte, tickHash [32]byte) ([32]byte, bool) {
	return v.clock.UpdateNeighborHash(neighbor, tickHash)
}

// RemoveNeighbor drops a neighbor's tick hash, e.g. once it's no longer
// peered with this server.
func (v *Verifier) RemoveNeighbor(neighbor [32]byte) ([32]byte, bool) {
	return v.clock.RemoveNeighbor(neighbor)
}
