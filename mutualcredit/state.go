// Package mutualcredit implements the accounting primitive a token
// channel manipulates: a per-(friend, currency) bilateral ledger with
// max-debt caps and pending-freeze bookkeeping (spec.md §3, §4.1).
//
// The ledger-changing methods here are called from tokenchannel's
// incoming/outgoing MoveToken handling; the router only reads capacity
// through HasCapacity before forwarding a request. None of
// these methods touch the network, a clock, or storage — they are pure
// state transitions over the four invariants of §3, grounded on the
// HTLC add/settle/fail lifecycle lnwallet/channel.go's PaymentDescriptor
// log keeps for a single channel, generalized here to an opaque
// Currency and split across two independent pending-tx tables.
package mutualcredit

import (
	"math/big"

	"lukechampine.com/uint128"
)

// Direction says which side of the channel an operation travels: the
// request we sent outward, or the request our friend sent us.
type Direction uint8

const (
	// Outgoing means we are the one applying an operation we
	// originated (a request we forwarded, consuming local capacity).
	Outgoing Direction = iota
	// Incoming means the operation arrived from our friend (a request
	// they forwarded to us, consuming remote capacity).
	Incoming
)

// PendingTx is the freeze record for one in-flight request (§3).
type PendingTx struct {
	RequestID     [16]byte
	SrcHashedLock [32]byte
	Route         [][32]byte
	DestPayment   uint128.Uint128
	InvoiceHash   [32]byte
	LeftFees      uint128.Uint128
}

func (p PendingTx) exposure() uint128.Uint128 {
	return p.DestPayment.Add(p.LeftFees)
}

// State is the bilateral ledger for one (friend, currency) pair.
type State struct {
	balance          *big.Int // signed i128; positive means friend owes us
	localPendingDebt uint128.Uint128
	remotePendingDebt uint128.Uint128
	inFees           *big.Int // u256
	outFees          *big.Int // u256
	localMaxDebt     uint128.Uint128
	remoteMaxDebt    uint128.Uint128

	pendingLocal  map[[16]byte]PendingTx
	pendingRemote map[[16]byte]PendingTx

	localRequestsOpen  bool
	remoteRequestsOpen bool
}

// NewState creates a fresh ledger with zero balance and the given max
// debt caps, both sides open for new requests.
func NewState(localMaxDebt, remoteMaxDebt uint128.Uint128) *State {
	return &State{
		balance:            big.NewInt(0),
		inFees:             big.NewInt(0),
		outFees:            big.NewInt(0),
		localMaxDebt:       localMaxDebt,
		remoteMaxDebt:      remoteMaxDebt,
		pendingLocal:       make(map[[16]byte]PendingTx),
		pendingRemote:      make(map[[16]byte]PendingTx),
		localRequestsOpen:  true,
		remoteRequestsOpen: true,
	}
}

// Snapshot is the tuple Testable Property 1 requires both peers to agree
// on after applying the same McOp sequence.
type Snapshot struct {
	Balance           *big.Int
	LocalPendingDebt  uint128.Uint128
	RemotePendingDebt uint128.Uint128
	InFees            *big.Int
	OutFees           *big.Int
}

// Snapshot returns the five scalars that must match between both peers.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Balance:           new(big.Int).Set(s.balance),
		LocalPendingDebt:  s.localPendingDebt,
		RemotePendingDebt: s.remotePendingDebt,
		InFees:            new(big.Int).Set(s.inFees),
		OutFees:           new(big.Int).Set(s.outFees),
	}
}

// CloseLocalRequests stops this side from accepting new locally
// originated requests, e.g. while a currency is being removed.
func (s *State) CloseLocalRequests() { s.localRequestsOpen = false }

// CloseRemoteRequests stops this side from accepting new
// remote-originated requests.
func (s *State) CloseRemoteRequests() { s.remoteRequestsOpen = false }

// checkLocalInvariant and checkRemoteInvariant re-derive invariants 1 and
// 2 of §3 from scratch and report whether they still hold; ApplyRequest
// runs the matching one after growing pending debt, as a cheap
// consistency assertion in the same spirit as lnwallet/channel.go's
// weight/HTLC-count checks before committing a new state.
func (s *State) checkLocalInvariant() bool {
	// -(local_max_debt) <= balance - local_pending_debt
	lhs := new(big.Int).Neg(s.localMaxDebt.Big())
	rhs := new(big.Int).Sub(s.balance, s.localPendingDebt.Big())
	return lhs.Cmp(rhs) <= 0
}

func (s *State) checkRemoteInvariant() bool {
	// balance + remote_pending_debt <= remote_max_debt
	lhs := new(big.Int).Add(s.balance, s.remotePendingDebt.Big())
	return lhs.Cmp(s.remoteMaxDebt.Big()) <= 0
}

// AvailableCapacity reports how much more exposure (dest_payment+left_fees)
// could be queued in direction before ApplyRequest would reject it with
// ErrMaxDebtExceeded, without mutating the ledger. Outgoing mirrors
// invariant 1 (the check ApplyRequest performs for a request we forward);
// Incoming mirrors invariant 2 (the check it performs for a request our
// friend sends us). A non-positive result means no further exposure fits.
func (s *State) AvailableCapacity(direction Direction) *big.Int {
	switch direction {
	case Outgoing:
		// invariant 1 solved for room: balance - local_pending_debt + local_max_debt
		headroom := new(big.Int).Sub(s.balance, s.localPendingDebt.Big())
		return headroom.Add(headroom, s.localMaxDebt.Big())

	case Incoming:
		// invariant 2 solved for room: remote_max_debt - balance - remote_pending_debt
		headroom := new(big.Int).Sub(s.remoteMaxDebt.Big(), s.balance)
		return headroom.Sub(headroom, s.remotePendingDebt.Big())

	default:
		panic("mutualcredit: unknown direction")
	}
}

// HasCapacity reports whether exposure more units could be queued in
// direction without violating its governing invariant — the same test
// ApplyRequest performs, exposed as a side-effect-free preview so a
// caller can refuse to forward a request that would later fail.
func (s *State) HasCapacity(direction Direction, exposure uint128.Uint128) bool {
	return s.AvailableCapacity(direction).Cmp(exposure.Big()) >= 0
}

// NewStateFromSnapshot rebuilds a ledger from an agreed Snapshot — used
// after a reset (§4.2.3), where both sides discard all in-flight pending
// transactions and restore balance/fees to the jointly signed values. Max
// debt caps are supplied separately since a reset doesn't renegotiate
// them.
func NewStateFromSnapshot(snap Snapshot, localMaxDebt, remoteMaxDebt uint128.Uint128) *State {
	return &State{
		balance:            new(big.Int).Set(snap.Balance),
		localPendingDebt:   uint128.Zero,
		remotePendingDebt:  uint128.Zero,
		inFees:             new(big.Int).Set(snap.InFees),
		outFees:            new(big.Int).Set(snap.OutFees),
		localMaxDebt:       localMaxDebt,
		remoteMaxDebt:      remoteMaxDebt,
		pendingLocal:       make(map[[16]byte]PendingTx),
		pendingRemote:      make(map[[16]byte]PendingTx),
		localRequestsOpen:  true,
		remoteRequestsOpen: true,
	}
}

// LocalMaxDebt returns the currently configured local cap.
func (s *State) LocalMaxDebt() uint128.Uint128 { return s.localMaxDebt }

// RemoteMaxDebt returns the currently configured remote cap.
func (s *State) RemoteMaxDebt() uint128.Uint128 { return s.remoteMaxDebt }

// Clone returns an independent copy of the ledger. The token channel uses
// this to speculatively apply an incoming MoveToken's operations against a
// scratch copy, verify the resulting info_hash and signature, and only
// then commit the clone back in place of the live state — the same
// stage-then-commit shape lnwallet/channel.go uses for a pending commitment
// before it's revoked into the current one.
func (s *State) Clone() *State {
	clone := &State{
		balance:            new(big.Int).Set(s.balance),
		localPendingDebt:   s.localPendingDebt,
		remotePendingDebt:  s.remotePendingDebt,
		inFees:             new(big.Int).Set(s.inFees),
		outFees:            new(big.Int).Set(s.outFees),
		localMaxDebt:       s.localMaxDebt,
		remoteMaxDebt:      s.remoteMaxDebt,
		pendingLocal:       make(map[[16]byte]PendingTx, len(s.pendingLocal)),
		pendingRemote:      make(map[[16]byte]PendingTx, len(s.pendingRemote)),
		localRequestsOpen:  s.localRequestsOpen,
		remoteRequestsOpen: s.remoteRequestsOpen,
	}
	for k, v := range s.pendingLocal {
		clone.pendingLocal[k] = v
	}
	for k, v := range s.pendingRemote {
		clone.pendingRemote[k] = v
	}
	return clone
}
