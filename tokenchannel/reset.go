package tokenchannel

import (
	"bytes"
	"context"
	"math/big"

	"github.com/creditmesh/corenet/ccrypto"
	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/mutualcredit"
	"lukechampine.com/uint128"
)

// enterInconsistent implements the local half of §4.2.3: compute
// ResetTerms signed over the reset-token buffer, using the last agreed
// (pre-divergence) balances — which, thanks to incoming.go's stage-then-
// commit handling, is exactly c.currencies at the moment a MoveToken is
// rejected.
//
// Per the reset-confusion resolution recorded in the design ledger: a
// party that already has local reset terms outstanding keeps them rather
// than generating new ones on a second trigger, so its offer stays stable
// until acknowledged.
func (c *Channel) enterInconsistent(ctx context.Context) (*ResetTerms, error) {
	c.status = StatusInconsistent

	if c.localResetTerms != nil {
		return c.localResetTerms, nil
	}

	counter := c.moveTokenCounter + 1
	sigBuf := ccrypto.ResetTokenSigBuf(c.localPK, c.remotePK, counter)
	token, err := c.identity.Sign(ctx, sigBuf)
	if err != nil {
		return nil, err
	}

	balances := make(map[mcwire.Currency]mutualcredit.Snapshot, len(c.currencies))
	for tag, state := range c.currencies {
		balances[tag] = state.Snapshot()
	}

	terms := &ResetTerms{
		ResetToken:       token,
		MoveTokenCounter: counter,
		Balances:         balances,
	}
	c.localResetTerms = terms
	return terms, nil
}

// EnterInconsistent forces the channel into Inconsistent directly and
// returns the local reset terms it offers. A transport layer calls this
// when a friend's ResetTerms proposal arrives while this side still
// believes the channel consistent — the proposal itself is proof enough
// of divergence.
func (c *Channel) EnterInconsistent(ctx context.Context) (*ResetTerms, error) {
	return c.enterInconsistent(ctx)
}

// LocalResetTerms returns the reset terms this side is currently
// offering, if the channel is Inconsistent.
func (c *Channel) LocalResetTerms() *ResetTerms { return c.localResetTerms }

// WireResetTerms encodes the local reset terms for transmission.
func (c *Channel) WireResetTerms() *mcwire.ResetTerms {
	if c.localResetTerms == nil {
		return nil
	}
	return toWireResetTerms(c.localResetTerms)
}

// ReceiveResetTerms implements the remote half of §4.2.3's exchange:
// verify the friend's proposed reset terms and, if valid, record them so
// AcceptReset can later act on them. Only meaningful while Inconsistent.
func (c *Channel) ReceiveResetTerms(remote *mcwire.ResetTerms) error {
	if c.status != StatusInconsistent {
		return ErrNotInconsistent
	}
	if remote.MoveTokenCounter != c.moveTokenCounter+1 {
		return ErrStaleReset
	}

	sigBuf := ccrypto.ResetTokenSigBuf(c.remotePK, c.localPK, remote.MoveTokenCounter)
	if !ccrypto.Verify(c.remotePK, sigBuf, remote.ResetToken) {
		return ErrBadResetSignature
	}

	c.remoteResetTerms = fromWireResetTerms(remote)
	return nil
}

// AcceptReset implements the accepting side of §4.2.3: send a new
// MoveToken whose old_token equals the friend's reset_token, carrying no
// ops, re-establishing the chain at the friend's proposed balances.
func (c *Channel) AcceptReset(ctx context.Context) (*mcwire.MoveToken, error) {
	if c.status != StatusInconsistent {
		return nil, ErrNotInconsistent
	}
	if c.remoteResetTerms == nil {
		return nil, ErrNotInconsistent
	}

	restored := c.restoreFromSnapshots(c.remoteResetTerms.Balances)
	hash := balancesHash(restored)
	infoHash := ccrypto.InfoHash(c.localPK, c.remotePK, hash, c.remoteResetTerms.MoveTokenCounter)

	sigBuf := ccrypto.MoveTokenSigBuf(c.remoteResetTerms.ResetToken, infoHash)
	newToken, err := c.identity.Sign(ctx, sigBuf)
	if err != nil {
		return nil, err
	}

	mt := &mcwire.MoveToken{
		OldToken:         c.remoteResetTerms.ResetToken,
		InfoHash:         infoHash,
		MoveTokenCounter: c.remoteResetTerms.MoveTokenCounter,
		NewToken:         newToken,
	}

	c.commitReset(restored, mt, StatusConsistentOut)
	return mt, nil
}

// handleIncomingDuringReset implements the initiating side's half: a
// MoveToken arriving while Inconsistent is only meaningful if it
// acknowledges the reset terms we offered; anything else is dropped
// silently, per §7's "never propagate past the channel" handling, and
// the channel stays Inconsistent.
func (c *Channel) handleIncomingDuringReset(m *mcwire.MoveToken) (IncomingOutcome, error) {
	if c.localResetTerms == nil {
		return IncomingOutcome{}, nil
	}
	if !bytes.Equal(c.localResetTerms.ResetToken[:], m.OldToken[:]) {
		return IncomingOutcome{}, nil
	}
	if m.MoveTokenCounter != c.localResetTerms.MoveTokenCounter {
		return IncomingOutcome{}, nil
	}

	sigBuf := ccrypto.MoveTokenSigBuf(m.OldToken, m.InfoHash)
	if !ccrypto.Verify(c.remotePK, sigBuf, m.NewToken) {
		return IncomingOutcome{}, nil
	}

	restored := c.restoreFromSnapshots(c.localResetTerms.Balances)
	expected := ccrypto.InfoHash(c.remotePK, c.localPK, balancesHash(restored), m.MoveTokenCounter)
	if expected != m.InfoHash {
		return IncomingOutcome{}, nil
	}

	c.commitReset(restored, m, StatusConsistentIn)
	return IncomingOutcome{Accepted: true}, nil
}

// commitReset lands the reset's agreed state: clears all in-flight
// pending transactions (they're lost with the old chain, same as any
// McOp not yet acknowledged at the point of divergence), resets the
// idempotent-duplicate tracking, and clears both sides' reset terms.
func (c *Channel) commitReset(restored map[mcwire.Currency]*mutualcredit.State, m *mcwire.MoveToken, next Status) {
	c.currencies = restored
	c.moveTokenCounter = m.MoveTokenCounter
	c.havePrevIn = false
	c.localResetTerms = nil
	c.remoteResetTerms = nil
	c.status = next

	if next == StatusConsistentIn {
		c.lastIn = m
		c.lastOut = nil
	} else {
		c.lastOut = m
		c.lastIn = nil
	}
}

// restoreFromSnapshots rebuilds currency ledgers from agreed snapshots,
// carrying forward this channel's currently configured max-debt caps
// (a reset renegotiates balances, not caps) and defaulting to zero caps
// for any currency the reset introduces that this side hadn't seen.
func (c *Channel) restoreFromSnapshots(snaps map[mcwire.Currency]mutualcredit.Snapshot) map[mcwire.Currency]*mutualcredit.State {
	out := make(map[mcwire.Currency]*mutualcredit.State, len(snaps))
	for tag, snap := range snaps {
		localMax, remoteMax := uint128.Zero, uint128.Zero
		if existing, ok := c.currencies[tag]; ok {
			localMax, remoteMax = existing.LocalMaxDebt(), existing.RemoteMaxDebt()
		}
		out[tag] = mutualcredit.NewStateFromSnapshot(snap, localMax, remoteMax)
	}
	return out
}

// toWireResetTerms / fromWireResetTerms convert between the domain
// ResetTerms (keyed by mutualcredit.Snapshot, convenient for in-process
// use) and the wire ResetTerms (flat byte encodings of the i128/u256
// fields, per mcwire's leaf-package convention).
func toWireResetTerms(terms *ResetTerms) *mcwire.ResetTerms {
	balances := make([]mcwire.CurrencyBalance, 0, len(terms.Balances))
	for tag, snap := range terms.Balances {
		balances = append(balances, mcwire.CurrencyBalance{
			Currency:          tag,
			Balance:           signedBigIntBytes(snap.Balance),
			LocalPendingDebt:  mcwire.Uint128{Hi: snap.LocalPendingDebt.Hi, Lo: snap.LocalPendingDebt.Lo},
			RemotePendingDebt: mcwire.Uint128{Hi: snap.RemotePendingDebt.Hi, Lo: snap.RemotePendingDebt.Lo},
			InFees:            snap.InFees.Bytes(),
			OutFees:           snap.OutFees.Bytes(),
		})
	}
	return &mcwire.ResetTerms{
		ResetToken:       terms.ResetToken,
		MoveTokenCounter: terms.MoveTokenCounter,
		Balances:         balances,
	}
}

func fromWireResetTerms(wire *mcwire.ResetTerms) *ResetTerms {
	balances := make(map[mcwire.Currency]mutualcredit.Snapshot, len(wire.Balances))
	for _, cb := range wire.Balances {
		balances[cb.Currency] = mutualcredit.Snapshot{
			Balance:           parseSignedBigInt(cb.Balance),
			LocalPendingDebt:  uint128.New(cb.LocalPendingDebt.Lo, cb.LocalPendingDebt.Hi),
			RemotePendingDebt: uint128.New(cb.RemotePendingDebt.Lo, cb.RemotePendingDebt.Hi),
			InFees:            new(big.Int).SetBytes(cb.InFees),
			OutFees:           new(big.Int).SetBytes(cb.OutFees),
		}
	}
	return &ResetTerms{
		ResetToken:       wire.ResetToken,
		MoveTokenCounter: wire.MoveTokenCounter,
		Balances:         balances,
	}
}

// signedBigIntBytes/parseSignedBigInt encode a signed math/big.Int as a
// one-byte sign flag (0 = non-negative, 1 = negative) followed by the
// magnitude's big-endian bytes, since balance may be negative but
// writeVarBytes only carries raw bytes.
func signedBigIntBytes(v *big.Int) []byte {
	sign := byte(0)
	if v.Sign() < 0 {
		sign = 1
	}
	mag := new(big.Int).Abs(v).Bytes()
	out := make([]byte, 0, len(mag)+1)
	out = append(out, sign)
	out = append(out, mag...)
	return out
}

func parseSignedBigInt(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	v := new(big.Int).SetBytes(b[1:])
	if b[0] == 1 {
		v.Neg(v)
	}
	return v
}
