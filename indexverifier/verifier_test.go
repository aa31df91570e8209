package indexverifier

import "testing"

func peerID(b byte) [32]byte {
	var id [32]byte
	id[0] = b
	return id
}

// randVal builds a deterministic stand-in for a HashClock tick's random
// input — tests don't need real entropy, just distinct values per call.
func randVal(b byte) [32]byte {
	var v [32]byte
	v[0] = b
	return v
}

func TestHashClockExpansionRoundTrip(t *testing.T) {
	clock := NewHashClock(4)
	tickHash := clock.Tick(randVal(0x01))

	got, ok := clock.VerifyExpansionChain(tickHash, nil)
	if !ok || got != tickHash {
		t.Fatalf("VerifyExpansionChain(own tick, empty chain) = (%v, %v)", got, ok)
	}
}

func TestHashClockRejectsUnknownOrigin(t *testing.T) {
	clock := NewHashClock(4)
	clock.Tick(randVal(0x01))

	var bogus [32]byte
	bogus[0] = 0xFF
	if _, ok := clock.VerifyExpansionChain(bogus, nil); ok {
		t.Fatalf("an origin hash never produced by this clock must not verify")
	}
}

func TestHashClockRingBufferEvictsOldest(t *testing.T) {
	clock := NewHashClock(2)
	h1 := clock.Tick(randVal(0x01))
	clock.Tick(randVal(0x02))
	clock.Tick(randVal(0x03)) // evicts h1

	if _, ok := clock.VerifyExpansionChain(h1, nil); ok {
		t.Fatalf("h1 should have been evicted from the ring buffer")
	}
}

// TestVerifierChainForwarding mirrors the worked example of four
// index servers gossiping tick hashes for a few rounds, then forwarding
// one message hop by hop, each server extending the expansion chain by
// one more link.
func TestVerifierChainForwarding(t *testing.T) {
	const ticksToLive = 8
	const numVerifiers = 4

	svs := make([]*Verifier, numVerifiers)
	for i := range svs {
		svs[i] = New(ticksToLive)
	}

	for iter := 0; iter < ticksToLive+1; iter++ {
		for i := 0; i < numVerifiers; i++ {
			tickHash, _, err := svs[i].Tick()
			if err != nil {
				t.Fatalf("Tick[%d] iter %d: %v", i, iter, err)
			}
			for j := 0; j < numVerifiers; j++ {
				if j == i {
					continue
				}
				svs[j].NeighborTick(peerID(byte(i+1)), tickHash)
			}
		}
	}

	tickHash, _, err := svs[0].Tick()
	if err != nil {
		t.Fatalf("final Tick: %v", err)
	}

	node := peerID(0xAA)
	sessionID := [16]byte{0x01}

	hashes0, ok := svs[0].Verify(tickHash, nil, node, sessionID, 0)
	if !ok {
		t.Fatalf("svs[0].Verify failed")
	}
	hashes1, ok := svs[1].Verify(tickHash, [][][32]byte{hashes0}, node, sessionID, 0)
	if !ok {
		t.Fatalf("svs[1].Verify failed")
	}
	hashes2, ok := svs[2].Verify(tickHash, [][][32]byte{hashes0, hashes1}, node, sessionID, 0)
	if !ok {
		t.Fatalf("svs[2].Verify failed")
	}
	if _, ok := svs[3].Verify(tickHash, [][][32]byte{hashes0, hashes1, hashes2}, node, sessionID, 0); !ok {
		t.Fatalf("svs[3].Verify failed")
	}
}

func TestRatchetPoolRejectsReplayedCounter(t *testing.T) {
	pool := NewRatchetPool(4)
	node := peerID(0x01)
	session := [16]byte{0x01}

	if !pool.Update(node, session, 5) {
		t.Fatalf("first update should be accepted")
	}
	if pool.Update(node, session, 5) {
		t.Fatalf("replayed counter must be rejected")
	}
	if pool.Update(node, session, 4) {
		t.Fatalf("lower counter must be rejected")
	}
	if !pool.Update(node, session, 6) {
		t.Fatalf("strictly higher counter in the same session must be accepted")
	}
}

func TestRatchetPoolRejectsSessionSwitchWhileLive(t *testing.T) {
	pool := NewRatchetPool(4)
	node := peerID(0x02)
	sessionA := [16]byte{0x0A}
	sessionB := [16]byte{0x0B}

	pool.Update(node, sessionA, 1)
	if pool.Update(node, sessionB, 1) {
		t.Fatalf("session switch while the cooldown is active must be rejected")
	}
}

func TestRatchetPoolAllowsSessionSwitchAfterAgingOut(t *testing.T) {
	pool := NewRatchetPool(2)
	node := peerID(0x03)
	sessionA := [16]byte{0x0A}
	sessionB := [16]byte{0x0B}

	pool.Update(node, sessionA, 1)
	pool.Tick()
	pool.Tick() // entry's cooldown fully decays and it's evicted

	if pool.Len() != 0 {
		t.Fatalf("entry should have aged out of the pool")
	}
	if !pool.Update(node, sessionB, 1) {
		t.Fatalf("a fresh session after the prior entry aged out should be accepted")
	}
}
