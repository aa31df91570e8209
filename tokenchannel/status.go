package tokenchannel

import (
	"bytes"

	"github.com/creditmesh/corenet/ccrypto"
	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/mutualcredit"
	"lukechampine.com/uint128"
)

// Status is the three-way sum type of §3: exactly one side holds the
// token (may emit the next MoveToken) at any time, or the chain has
// diverged and a reset is underway.
type Status uint8

const (
	// StatusConsistentIn mirrors spec.md's ConsistentIn(last_move_token_in):
	// we hold the token. EmitOutgoing may only be called in this status.
	StatusConsistentIn Status = iota

	// StatusConsistentOut mirrors ConsistentOut(move_token_out, last_in?):
	// the remote friend holds the token; we're waiting on their reply to
	// our last sent MoveToken.
	StatusConsistentOut

	// StatusInconsistent mirrors Inconsistent(local_reset_terms,
	// remote_reset_terms?): the chain has diverged and a reset dance is
	// in progress.
	StatusInconsistent
)

func (s Status) String() string {
	switch s {
	case StatusConsistentIn:
		return "consistent-in"
	case StatusConsistentOut:
		return "consistent-out"
	case StatusInconsistent:
		return "inconsistent"
	default:
		return "unknown"
	}
}

// ResetTerms is the signed offer a party makes upon entering Inconsistent
// (§4.2.3): the proposed new old_token, the counter it expects to
// continue from, and the balances both sides should agree to reset to.
type ResetTerms struct {
	ResetToken       [64]byte
	MoveTokenCounter uint64
	Balances         map[mcwire.Currency]mutualcredit.Snapshot
}

// Channel is one bilateral token-passing channel to a single friend,
// covering every currency the two sides have agreed to include (§3, §4.2).
type Channel struct {
	localPK  [32]byte
	remotePK [32]byte

	identity IdentityClient

	status Status

	currencies map[mcwire.Currency]*mutualcredit.State

	moveTokenCounter uint64

	lastIn  *mcwire.MoveToken
	lastOut *mcwire.MoveToken

	havePrevIn     bool
	prevInOldToken [64]byte

	localResetTerms  *ResetTerms
	remoteResetTerms *ResetTerms

	pendingOps    map[mcwire.Currency][]mcwire.McOp
	pendingDiff   []mcwire.CurrencyDiff
	pendingRelays []mcwire.RelayAddress
}

// New creates a fresh channel to remotePK. The initial token holder is
// decided by §4.2.4's lexicographic tie-break over sha512_256(public_key),
// so both sides independently reach the same starting status without any
// message exchange.
func New(localPK, remotePK [32]byte, identity IdentityClient) *Channel {
	return &Channel{
		localPK:    localPK,
		remotePK:   remotePK,
		identity:   identity,
		status:     initialHolder(localPK, remotePK),
		currencies: make(map[mcwire.Currency]*mutualcredit.State),
		pendingOps: make(map[mcwire.Currency][]mcwire.McOp),
	}
}

// initialHolder implements §4.2.4: the side with the lexicographically
// smaller sha512_256(public_key) is the initial token-holder.
func initialHolder(localPK, remotePK [32]byte) Status {
	localHash := ccrypto.Hash256(localPK[:])
	remoteHash := ccrypto.Hash256(remotePK[:])
	if bytes.Compare(localHash[:], remoteHash[:]) < 0 {
		return StatusConsistentIn
	}
	return StatusConsistentOut
}

// Status reports the channel's current three-way state.
func (c *Channel) Status() Status { return c.status }

// MoveTokenCounter reports the current move_token_counter.
func (c *Channel) MoveTokenCounter() uint64 { return c.moveTokenCounter }

// AddCurrency brings a new (friend, currency) ledger into the channel
// with the given max-debt caps. It does not itself emit a currencies_diff
// entry; callers queue that with QueueCurrencyDiff so it rides on the
// next outgoing MoveToken.
func (c *Channel) AddCurrency(currency mcwire.Currency, localMaxDebt, remoteMaxDebt uint128.Uint128) {
	c.currencies[currency] = mutualcredit.NewState(localMaxDebt, remoteMaxDebt)
}

// Currency returns the live mutual-credit ledger for a currency, if the
// channel carries one.
func (c *Channel) Currency(currency mcwire.Currency) (*mutualcredit.State, bool) {
	state, ok := c.currencies[currency]
	return state, ok
}

// QueueOp stages a McOp for the named currency to go out in the next
// outgoing MoveToken (§4.2.2's "batch the queued operations").
func (c *Channel) QueueOp(currency mcwire.Currency, op mcwire.McOp) {
	c.pendingOps[currency] = append(c.pendingOps[currency], op)
}

// QueueCurrencyDiff stages an add/remove of a currency to ride on the
// next outgoing MoveToken.
func (c *Channel) QueueCurrencyDiff(diff mcwire.CurrencyDiff) {
	c.pendingDiff = append(c.pendingDiff, diff)
}

// QueueRelay stages a relay-address change to ride on the next outgoing
// MoveToken (§4.3.3).
func (c *Channel) QueueRelay(relay mcwire.RelayAddress) {
	c.pendingRelays = append(c.pendingRelays, relay)
}
