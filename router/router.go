// Package router implements the node-wide dispatch bus of §4.3: a
// friend → token-channel map plus the queues that carry requests,
// responses, cancels, and relay-set updates between them. It is the Go
// analogue of htlcswitch/switch.go's central Switch, generalized from
// HTLCs routed by short channel ID to McOps routed by public key and
// currency.
package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/tokenchannel"
)

// friendState is everything the router tracks for one friend: its token
// channel plus the per-friend slices of §4.3's queues.
type friendState struct {
	channel *tokenchannel.Channel

	pendingUserRequests []pendingRequest
	pendingRequests     []pendingRequest
	pendingBackwards    []BackwardsOp
	sentRelays          []SentRelay

	online bool
}

// DestinationHandler is invoked when a forwarded request's route empties
// out at this node — the local app or seller module decides how (or
// whether) to answer it.
type DestinationHandler func(currency mcwire.Currency, req *mcwire.McRequest)

// LocalSettledHandler is invoked when a response or cancel comes back
// for a request this node itself originated.
type LocalSettledHandler func(requestID [16]byte, resp *mcwire.McResponse, cancel *mcwire.McCancel)

// Config collects the Router's dependencies, in the same spirit as
// htlcswitch.Config: callbacks injected by the caller rather than the
// router reaching into global state.
type Config struct {
	LocalPublicKey [32]byte
	Rate           Rate
	Registerer     prometheus.Registerer

	OnDestination   DestinationHandler
	OnLocalSettled  LocalSettledHandler

	// MaxOpsPerFlush bounds how many queued operations a single Flush
	// call batches into one outgoing MoveToken (§4.3.4's "configured
	// per-token operation budget").
	MaxOpsPerFlush int
}

const defaultMaxOpsPerFlush = 100

// Router is the node-wide view §4.3 describes: it owns every friend's
// token channel and the queues feeding it, and knows nothing about
// transport or storage — those are driven from outside via Flush's
// return value and the DatabaseClient the caller wires in separately.
type Router struct {
	mu sync.Mutex

	cfg Config

	friends map[[32]byte]*friendState

	localRequestIDs     map[[16]byte]struct{}
	remoteRequestOrigin map[[16]byte]requestOrigin

	metrics *metrics
}

// New creates an empty Router. Friends are added one at a time via
// AddFriend as the local trusted-peer directory (§6) is loaded or
// updated.
func New(cfg Config) *Router {
	if cfg.Rate == nil {
		cfg.Rate = LinearRate{}
	}
	if cfg.MaxOpsPerFlush <= 0 {
		cfg.MaxOpsPerFlush = defaultMaxOpsPerFlush
	}
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Router{
		cfg:                 cfg,
		friends:             make(map[[32]byte]*friendState),
		localRequestIDs:     make(map[[16]byte]struct{}),
		remoteRequestOrigin: make(map[[16]byte]requestOrigin),
		metrics:             newMetrics(reg),
	}
}

// AddFriend registers a token channel for a friend, so the queues can
// address it. Liveness starts false until SetLiveness(friend, true) is
// called, typically once the transport layer reports a live connection.
func (r *Router) AddFriend(friendPK [32]byte, channel *tokenchannel.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.friends[friendPK] = &friendState{channel: channel}
}

// RemoveFriend drops a friend and its queues entirely.
func (r *Router) RemoveFriend(friendPK [32]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.friends, friendPK)
}

// SetLiveness records whether the transport currently reports friendPK
// as reachable (§4.3's liveness map).
func (r *Router) SetLiveness(friendPK [32]byte, online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.friends[friendPK]; ok {
		f.online = online
	}
}

// friendLocked looks up a friend's state; caller must hold r.mu.
func (r *Router) friendLocked(friendPK [32]byte) (*friendState, bool) {
	f, ok := r.friends[friendPK]
	return f, ok
}
