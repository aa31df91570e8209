package router

import (
	"github.com/davecgh/go-spew/spew"
	"lukechampine.com/uint128"

	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/mutualcredit"
)

// HandleIncomingRequest implements §4.3.1: an McRequest has just arrived
// in an incoming MoveToken on friend origin. Route is the "remaining
// hops from this node forward" convention used throughout this repo
// (see tokenchannel's destinationKey): an empty route means this node is
// the final destination, otherwise the route's head names the next hop
// and the rest of the route continues onward unchanged.
func (r *Router) HandleIncomingRequest(origin [32]byte, currency mcwire.Currency, req *mcwire.McRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remoteRequestOrigin[req.RequestID] = requestOrigin{friend: origin, currency: currency}

	if len(req.Route) == 0 {
		if r.cfg.OnDestination != nil {
			r.cfg.OnDestination(currency, req)
		}
		return
	}

	nextHop := [32]byte(req.Route[0])
	remainingRoute := append([]mcwire.PublicKey(nil), req.Route[1:]...)

	next, ok := r.friendLocked(nextHop)
	if !ok {
		r.cancelBack(origin, currency, req.RequestID)
		return
	}
	state, hasCurrency := next.channel.Currency(currency)
	if !hasCurrency {
		r.cancelBack(origin, currency, req.RequestID)
		return
	}

	hopFee := r.cfg.Rate.HopFee(currency, wireToUint128(req.DestPayment))
	leftFees := wireToUint128(req.LeftFees)
	if leftFees.Cmp(hopFee) < 0 {
		// Not enough fee budget left to pay for this hop: cancel.
		r.cancelBack(origin, currency, req.RequestID)
		return
	}
	newLeftFees := leftFees.Sub(hopFee)

	exposure := wireToUint128(req.DestPayment).Add(newLeftFees)
	if !state.HasCapacity(mutualcredit.Outgoing, exposure) {
		// The next hop's channel has no room for this request: cancel
		// rather than queue it and have it fail later at flush time.
		r.cancelBack(origin, currency, req.RequestID)
		return
	}

	forwarded := &mcwire.McRequest{
		RequestID:     req.RequestID,
		Route:         remainingRoute,
		DestPayment:   req.DestPayment,
		LeftFees:      uint128ToWire(newLeftFees),
		InvoiceHash:   req.InvoiceHash,
		SrcHashedLock: req.SrcHashedLock,
	}

	log.Debugf("Forwarding request to next hop: %v", spew.Sdump(forwarded))

	next.pendingRequests = append(next.pendingRequests, pendingRequest{currency: currency, req: forwarded})
	r.metrics.requestsForwarded.Inc()
}

// cancelBack enqueues a Cancel for request_id into origin's backwards
// queue — the failure path of §4.3.1 step 3.
func (r *Router) cancelBack(origin [32]byte, currency mcwire.Currency, requestID mcwire.RequestID) {
	f, ok := r.friendLocked(origin)
	if !ok {
		return
	}
	f.pendingBackwards = append(f.pendingBackwards, BackwardsOp{
		Currency: currency,
		Cancel:   &mcwire.McCancel{RequestID: requestID},
	})
	r.metrics.requestsCancelled.Inc()
}

// SendLocalRequest queues a request this node itself originates (as
// opposed to one forwarded from another friend), mirroring the Rust
// send_request's local-origination path: route[0] must be this node and
// is dropped, route[1] becomes the first hop.
func (r *Router) SendLocalRequest(currency mcwire.Currency, route []mcwire.PublicKey, req *mcwire.McRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(route) == 0 || [32]byte(route[0]) != r.cfg.LocalPublicKey {
		return ErrInvalidRoute
	}
	if _, dup := r.localRequestIDs[req.RequestID]; dup {
		return ErrDuplicateRequestID
	}
	if len(route) < 2 {
		return ErrInvalidRoute
	}
	firstHop := [32]byte(route[1])

	f, ok := r.friendLocked(firstHop)
	if !ok {
		return ErrUnknownFriend
	}

	outgoing := &mcwire.McRequest{
		RequestID:     req.RequestID,
		Route:         append([]mcwire.PublicKey(nil), route[2:]...),
		DestPayment:   req.DestPayment,
		LeftFees:      req.LeftFees,
		InvoiceHash:   req.InvoiceHash,
		SrcHashedLock: req.SrcHashedLock,
	}

	f.pendingUserRequests = append(f.pendingUserRequests, pendingRequest{currency: currency, req: outgoing})
	r.localRequestIDs[req.RequestID] = struct{}{}
	return nil
}

func wireToUint128(v mcwire.Uint128) uint128.Uint128 {
	return uint128.New(v.Lo, v.Hi)
}

func uint128ToWire(v uint128.Uint128) mcwire.Uint128 {
	return mcwire.Uint128{Hi: v.Hi, Lo: v.Lo}
}
