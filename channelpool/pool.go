// Package channelpool tracks the live sealing/opening keys installed by
// the handshake for every peer, per §4.5: one current sending key plus a
// short FIFO carousel of recent receiving keys, so a peer that just
// re-handshook (e.g. after a transport reconnect) doesn't invalidate
// frames already in flight under the previous receiving key. Incoming
// frames carry their channel_id as a 16-byte prefix; Lookup resolves
// that straight to the peer and opening key via a secondary index, the
// same linkIndex/forwardingIndex dual-index shape used elsewhere in
// this repo to go from a wire identifier to a live entry in O(1).
package channelpool

import "sync"

// SendEntry is the one sending (sealing) key currently installed for a
// peer.
type SendEntry struct {
	ChannelID [16]byte
	Key       [32]byte
}

// RecvEntry is one receiving (opening) key in a peer's carousel.
// KeepaliveTimeout counts down to zero on each Tick; it is refreshed to
// the pool's configured keepalive on installation and left alone
// otherwise — the carousel has no separate "touch on use" refresh,
// matching the plain decrement-to-zero eviction §4.5 describes.
type RecvEntry struct {
	ChannelID        [16]byte
	Key              [32]byte
	KeepaliveTimeout int
}

type peerEntry struct {
	peerPK    [32]byte
	sending   *SendEntry
	receiving []*RecvEntry // oldest first, newest last
}

// Pool is one node's channel pool, covering every peer it has an active
// or recently-active channel with.
type Pool struct {
	mu             sync.Mutex
	peers          map[[32]byte]*peerEntry
	byChannelID    map[[16]byte][32]byte
	carouselLen    int
	keepaliveTicks int
}

const (
	defaultCarouselLen    = 3
	defaultKeepaliveTicks = 600
)

// New builds an empty Pool. carouselLen and keepaliveTicks fall back to
// their §4.5 defaults (a 2-3 entry carousel, here 3) when zero.
func New(carouselLen, keepaliveTicks int) *Pool {
	if carouselLen <= 0 {
		carouselLen = defaultCarouselLen
	}
	if keepaliveTicks <= 0 {
		keepaliveTicks = defaultKeepaliveTicks
	}
	return &Pool{
		peers:          make(map[[32]byte]*peerEntry),
		byChannelID:    make(map[[16]byte][32]byte),
		carouselLen:    carouselLen,
		keepaliveTicks: keepaliveTicks,
	}
}

// Install records a freshly completed handshake's keys for peerPK: the
// new sending key replaces whatever was installed before (the old
// sending channel_id is dropped from the index immediately, since the
// peer has already moved on to the new one), and the new receiving key
// is pushed onto the carousel, evicting the oldest entry past
// carouselLen.
func (p *Pool) Install(peerPK [32]byte, txChannelID [16]byte, txKey [32]byte, rxChannelID [16]byte, rxKey [32]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.peers[peerPK]
	if !ok {
		entry = &peerEntry{peerPK: peerPK}
		p.peers[peerPK] = entry
	}

	if entry.sending != nil {
		delete(p.byChannelID, entry.sending.ChannelID)
	}
	entry.sending = &SendEntry{ChannelID: txChannelID, Key: txKey}

	entry.receiving = append(entry.receiving, &RecvEntry{
		ChannelID:        rxChannelID,
		Key:              rxKey,
		KeepaliveTimeout: p.keepaliveTicks,
	})
	for len(entry.receiving) > p.carouselLen {
		evicted := entry.receiving[0]
		entry.receiving = entry.receiving[1:]
		delete(p.byChannelID, evicted.ChannelID)
	}
	p.byChannelID[rxChannelID] = peerPK
}

// SendingKey returns the channel_id and key this node should currently
// seal outgoing frames to peerPK with.
func (p *Pool) SendingKey(peerPK [32]byte) (channelID [16]byte, key [32]byte, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.peers[peerPK]
	if !ok || entry.sending == nil {
		return [16]byte{}, [32]byte{}, ErrUnknownPeer
	}
	return entry.sending.ChannelID, entry.sending.Key, nil
}

// Lookup resolves an inbound frame's channel_id prefix to the peer and
// opening key it should be unsealed with.
func (p *Pool) Lookup(channelID [16]byte) (peerPK [32]byte, key [32]byte, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pk, ok := p.byChannelID[channelID]
	if !ok {
		return [32]byte{}, [32]byte{}, ErrUnknownChannelID
	}
	entry := p.peers[pk]
	for _, rx := range entry.receiving {
		if rx.ChannelID == channelID {
			return pk, rx.Key, nil
		}
	}
	return [32]byte{}, [32]byte{}, ErrUnknownChannelID
}

// RemovePeer tears down every entry for peerPK, e.g. once its transport
// connection has been gone long enough that no replacement handshake is
// expected.
func (p *Pool) RemovePeer(peerPK [32]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.peers[peerPK]
	if !ok {
		return
	}
	if entry.sending != nil {
		delete(p.byChannelID, entry.sending.ChannelID)
	}
	for _, rx := range entry.receiving {
		delete(p.byChannelID, rx.ChannelID)
	}
	delete(p.peers, peerPK)
}

// Tick ages every peer's carousel by one, evicting any receiving entry
// whose keepalive hits zero. Per §4.5's bidirectional liveness guard, if
// the newest (last) receiving entry expires the sending entry is also
// dropped — a peer that has gone silent long enough to lose its own
// latest key offer isn't worth sending to either.
func (p *Pool) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, entry := range p.peers {
		kept := entry.receiving[:0]
		newestExpired := false
		for i, rx := range entry.receiving {
			rx.KeepaliveTimeout--
			if rx.KeepaliveTimeout > 0 {
				kept = append(kept, rx)
				continue
			}
			delete(p.byChannelID, rx.ChannelID)
			if i == len(entry.receiving)-1 {
				newestExpired = true
			}
		}
		entry.receiving = kept

		if newestExpired && entry.sending != nil {
			delete(p.byChannelID, entry.sending.ChannelID)
			entry.sending = nil
		}
	}
}
