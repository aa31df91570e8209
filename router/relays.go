package router

import "github.com/creditmesh/corenet/mcwire"

// localRelay is one entry of this node's own relay set, as configured
// by whatever reads the trusted-peer directory / config file (§6) —
// out of scope for this package beyond consuming the resulting slice.
type localRelay struct {
	RelayPublicKey [32]byte
	Address        string
}

// SyncRelays implements §4.3.3: diff friendPK's previously sent relay
// set against the new local set, and queue RelaysUpdate entries only
// for what actually changed — an entry whose generation has already been
// sent and acknowledged is never resent, per the idempotent-resend rule
// pinned more precisely in the supplemented-features grounding than in
// the plain wire spec.
func (r *Router) SyncRelays(friendPK [32]byte, current []localRelay) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.friendLocked(friendPK)
	if !ok {
		return
	}

	wanted := make(map[[32]byte]localRelay, len(current))
	for _, relay := range current {
		wanted[relay.RelayPublicKey] = relay
	}

	sentByKey := make(map[[32]byte]*SentRelay, len(f.sentRelays))
	for i := range f.sentRelays {
		sentByKey[f.sentRelays[i].RelayPublicKey] = &f.sentRelays[i]
	}

	var diff []mcwire.RelayAddress

	// Additions and updates: anything wanted that we haven't sent yet,
	// or sent with a stale address.
	for key, relay := range wanted {
		sent, exists := sentByKey[key]
		if exists && !sent.Removed && sent.Address == relay.Address {
			continue
		}
		gen := uint64(1)
		if exists {
			gen = sent.Generation + 1
		}
		diff = append(diff, mcwire.RelayAddress{
			RelayPublicKey: relay.RelayPublicKey,
			Address:        relay.Address,
			Generation:     gen,
		})
		if exists {
			sent.Address = relay.Address
			sent.Generation = gen
			sent.Removed = false
			sent.Acked = false
		} else {
			f.sentRelays = append(f.sentRelays, SentRelay{
				RelayPublicKey: key,
				Address:        relay.Address,
				Generation:     gen,
			})
		}
	}

	// Removals: anything previously sent (and not already marked
	// removed) that's no longer in the wanted set.
	for i := range f.sentRelays {
		sent := &f.sentRelays[i]
		if sent.Removed {
			continue
		}
		if _, stillWanted := wanted[sent.RelayPublicKey]; stillWanted {
			continue
		}
		sent.Generation++
		sent.Removed = true
		sent.Acked = false
		diff = append(diff, mcwire.RelayAddress{
			RelayPublicKey: sent.RelayPublicKey,
			Address:        sent.Address,
			Generation:     sent.Generation,
			Remove:         true,
		})
	}

	for _, rl := range diff {
		f.channel.QueueRelay(rl)
	}
}
