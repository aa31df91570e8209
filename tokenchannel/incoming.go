package tokenchannel

import (
	"bytes"
	"context"

	"github.com/creditmesh/corenet/ccrypto"
	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/mutualcredit"
)

// IncomingOutcome tells the caller what happened to an incoming MoveToken
// and, when applicable, what to send back.
type IncomingOutcome struct {
	// Accepted is true when the message extended or acknowledged the
	// chain, or completed a reset, and was applied.
	Accepted bool

	// Duplicate is true when the message was a retransmission of the
	// one we already accepted (§4.2.1 case 3): Reply, if non-nil, is the
	// cached outgoing MoveToken to resend unchanged.
	Duplicate bool
	Reply     *mcwire.MoveToken

	// WentInconsistent is true when processing the message drove the
	// channel into Inconsistent; LocalResetTerms is then populated.
	WentInconsistent bool
	LocalResetTerms  *ResetTerms
}

// HandleIncoming implements §4.2.1's four-way dispatch for an incoming
// MoveToken M from the remote friend. While Inconsistent, the only
// message that has any effect is one accepting our offered reset terms
// (§4.2.3); anything else is dropped, per handleIncomingDuringReset.
func (c *Channel) HandleIncoming(ctx context.Context, m *mcwire.MoveToken) (IncomingOutcome, error) {
	if c.status == StatusInconsistent {
		return c.handleIncomingDuringReset(m)
	}

	switch {
	case c.status == StatusConsistentIn && c.lastIn != nil && bytes.Equal(c.lastIn.NewToken[:], m.OldToken[:]):
		// Case 1: friend raced ahead of our reply and extended the
		// chain directly off the message we last accepted.
		return c.acceptChainExtension(ctx, m)

	case c.status == StatusConsistentOut && c.lastOut != nil && bytes.Equal(c.lastOut.NewToken[:], m.OldToken[:]):
		// Case 2: the ordinary flow — friend acknowledges and extends
		// from our last sent MoveToken.
		return c.acceptChainExtension(ctx, m)

	case c.status == StatusConsistentOut && c.lastOut == nil && c.lastIn == nil && m.OldToken == (mcwire.Signature{}):
		// Case 2 on a fresh channel: we have sent nothing yet, and the
		// initial holder's first MoveToken carries an all-zero
		// old_token (see EmitOutgoing).
		return c.acceptChainExtension(ctx, m)

	case c.havePrevIn && bytes.Equal(c.prevInOldToken[:], m.OldToken[:]):
		// Case 3: idempotent retransmission of the message we already
		// processed. Per §4.2.1, return the cached outgoing MoveToken
		// unchanged without reapplying anything.
		return IncomingOutcome{Duplicate: true, Reply: c.lastOut}, nil

	default:
		// Case 4: the chain doesn't continue from anything we
		// recognize. Enter Inconsistent and offer reset terms.
		terms, err := c.enterInconsistent(ctx)
		if err != nil {
			return IncomingOutcome{}, err
		}
		return IncomingOutcome{WentInconsistent: true, LocalResetTerms: terms}, nil
	}
}

// acceptChainExtension runs the five verification/application steps
// under "On a chain-extending MoveToken" in §4.2.1, using a stage-then-
// commit pattern so a failure midway leaves the live channel untouched.
func (c *Channel) acceptChainExtension(ctx context.Context, m *mcwire.MoveToken) (IncomingOutcome, error) {
	// Step 1: verify new_token signs sha("NEXT") ∥ old_token ∥ info_hash
	// under the friend's public key.
	sigBuf := ccrypto.MoveTokenSigBuf(m.OldToken, m.InfoHash)
	if !ccrypto.Verify(c.remotePK, sigBuf, m.NewToken) {
		return c.inconsistentOutcome(ctx)
	}

	// Stage: clone every currency ledger so currencies_diff and the
	// per-currency ops can be applied speculatively.
	staged := cloneCurrencies(c.currencies)

	// A currency introduced by this message's diff starts with zero max
	// debt on both sides until a later SetLocalMaxDebt/SetRemoteMaxDebt
	// raises it — the lifecycle note in §3 treats currency inclusion and
	// debt-cap configuration as separate steps.
	applyCurrencyDiff(staged, m.CurrenciesDiff, uint128Zero, uint128Zero)

	if err := applyCurrencyOps(c.localPK, staged, m.CurrenciesOps, mutualcredit.Incoming); err != nil {
		return c.inconsistentOutcome(ctx)
	}

	// Step 2: info_hash must commit to (friend_pk as local, our_pk as
	// remote, resulting balances, M's counter) — the friend computed it
	// from their own point of view.
	expected := ccrypto.InfoHash(c.remotePK, c.localPK, balancesHash(staged), m.MoveTokenCounter)
	if expected != m.InfoHash {
		return c.inconsistentOutcome(ctx)
	}

	// Commit: replace the live currency set, advance the counter, flip
	// status, and remember this message for idempotent-duplicate and
	// chain-extension checks on the next round.
	c.currencies = staged
	c.prevInOldToken = m.OldToken
	c.havePrevIn = true
	c.lastIn = m
	c.moveTokenCounter = m.MoveTokenCounter
	c.status = StatusConsistentIn

	return IncomingOutcome{Accepted: true}, nil
}

func (c *Channel) inconsistentOutcome(ctx context.Context) (IncomingOutcome, error) {
	terms, err := c.enterInconsistent(ctx)
	if err != nil {
		return IncomingOutcome{}, err
	}
	return IncomingOutcome{WentInconsistent: true, LocalResetTerms: terms}, nil
}
