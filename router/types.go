package router

import "github.com/creditmesh/corenet/mcwire"

// BackwardsOp is a response or cancel travelling back along a route to
// the friend that originally forwarded the matching request (§4.3's
// pending_backwards queue).
type BackwardsOp struct {
	Currency mcwire.Currency
	Response *mcwire.McResponse
	Cancel   *mcwire.McCancel
}

// SentRelay tracks one relay-address entry gossiped to a friend, with
// the generation number carried in RelayAddress and whether this side
// has already seen it acknowledged (§4.3.3's idempotent re-sync).
type SentRelay struct {
	RelayPublicKey [32]byte
	Address        string
	Generation     uint64
	Removed        bool
	Acked          bool
}

// requestOrigin records, for one remote-originated request_id, which
// friend to route the eventual response or cancel back to (§4.3's
// remote_request_origin map).
type requestOrigin struct {
	friend   [32]byte
	currency mcwire.Currency
}

// pendingRequest is a queued-but-not-yet-flushed McRequest together with
// the currency it travels in, stored per friend in pending_user_requests
// or pending_requests.
type pendingRequest struct {
	currency mcwire.Currency
	req      *mcwire.McRequest
}
