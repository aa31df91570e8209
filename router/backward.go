package router

import "github.com/creditmesh/corenet/mcwire"

// HandleIncomingResponse implements §4.3.2 for a response arriving on
// friend origin: deliver to the local app if this node originated the
// request, otherwise forward it backwards to whichever friend it came
// from. An unknown request_id (already settled, or lost to a reset) is
// dropped silently, per the §4.3.5 failure table.
func (r *Router) HandleIncomingResponse(origin [32]byte, currency mcwire.Currency, resp *mcwire.McResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, local := r.localRequestIDs[resp.RequestID]; local {
		delete(r.localRequestIDs, resp.RequestID)
		r.metrics.requestsSettled.Inc()
		if r.cfg.OnLocalSettled != nil {
			r.cfg.OnLocalSettled(resp.RequestID, resp, nil)
		}
		return
	}

	origTo, ok := r.remoteRequestOrigin[resp.RequestID]
	if !ok {
		return
	}
	delete(r.remoteRequestOrigin, resp.RequestID)

	f, ok := r.friendLocked(origTo.friend)
	if !ok {
		return
	}
	f.pendingBackwards = append(f.pendingBackwards, BackwardsOp{
		Currency: origTo.currency,
		Response: resp,
	})
}

// HandleIncomingCancel mirrors HandleIncomingResponse for a Cancel
// (§4.3.2).
func (r *Router) HandleIncomingCancel(origin [32]byte, currency mcwire.Currency, cancel *mcwire.McCancel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, local := r.localRequestIDs[cancel.RequestID]; local {
		delete(r.localRequestIDs, cancel.RequestID)
		if r.cfg.OnLocalSettled != nil {
			r.cfg.OnLocalSettled(cancel.RequestID, nil, cancel)
		}
		return
	}

	origTo, ok := r.remoteRequestOrigin[cancel.RequestID]
	if !ok {
		return
	}
	delete(r.remoteRequestOrigin, cancel.RequestID)

	f, ok := r.friendLocked(origTo.friend)
	if !ok {
		return
	}
	f.pendingBackwards = append(f.pendingBackwards, BackwardsOp{
		Currency: origTo.currency,
		Cancel:   cancel,
	})
}
