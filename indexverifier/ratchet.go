package indexverifier

// ratchetEntry is the last accepted (session_id, counter) pair seen
// from a peer, plus how many more ticks it has before falling out of
// the pool entirely.
type ratchetEntry struct {
	sessionID [16]byte
	counter   uint64
	remaining int
}

// RatchetPool implements §4.7's replay guard: per peer, track the last
// accepted (session_id, counter). A rising counter within the same
// session is always accepted; switching to a new session_id is accepted
// only once the peer's entry has fully aged out of the pool (its
// mandatory cooldown), at which point it's treated as a fresh peer.
type RatchetPool struct {
	entries     map[[32]byte]*ratchetEntry
	ticksToLive int
}

// NewRatchetPool builds a pool whose entries age out after ticksToLive
// calls to Tick without a successful Update.
func NewRatchetPool(ticksToLive int) *RatchetPool {
	if ticksToLive <= 0 {
		ticksToLive = 1
	}
	return &RatchetPool{
		entries:     make(map[[32]byte]*ratchetEntry),
		ticksToLive: ticksToLive,
	}
}

// Update reports whether (sessionID, counter) is new for node: either
// its first sighting, a strictly higher counter within its current
// session, or a new session presented after its previous one has aged
// out of the pool. Anything else (an equal-or-lower counter in the same
// session, or a session switch while the cooldown is still active) is
// rejected as a replay or abuse attempt.
func (p *RatchetPool) Update(node [32]byte, sessionID [16]byte, counter uint64) bool {
	entry, ok := p.entries[node]
	if !ok {
		p.entries[node] = &ratchetEntry{sessionID: sessionID, counter: counter, remaining: p.ticksToLive}
		return true
	}

	if entry.sessionID == sessionID {
		if counter <= entry.counter {
			return false
		}
		entry.counter = counter
		entry.remaining = p.ticksToLive
		return true
	}

	// Session changed: only acceptable once the previous session's
	// cooldown has fully decayed — but a live entry always has
	// remaining > 0 by construction (Tick deletes it at zero), so a
	// session switch against a still-present entry is always a
	// cooldown violation.
	return false
}

// Tick ages every entry in the pool by one, evicting (and returning the
// node keys for) any whose cooldown has fully decayed.
func (p *RatchetPool) Tick() [][32]byte {
	var removed [][32]byte
	for node, entry := range p.entries {
		entry.remaining--
		if entry.remaining <= 0 {
			removed = append(removed, node)
		}
	}
	for _, node := range removed {
		delete(p.entries, node)
	}
	return removed
}

// Len reports how many peers currently have a live ratchet entry.
func (p *RatchetPool) Len() int {
	return len(p.entries)
}
