package tokenchannel

import (
	"github.com/creditmesh/corenet/ccrypto"
	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/mutualcredit"
	"lukechampine.com/uint128"
)

// routeToKeys converts a wire route (remaining hops from this node
// forward) into the plain key slice mutualcredit.PendingTx stores.
func routeToKeys(route []mcwire.PublicKey) [][32]byte {
	out := make([][32]byte, len(route))
	for i, pk := range route {
		out[i] = [32]byte(pk)
	}
	return out
}

// destinationKey returns the public key a Response's signature must
// verify under: by convention the last hop of the PendingTx's recorded
// route is the final destination; a PendingTx with no remaining route
// means this node is itself the destination.
func destinationKey(tx mutualcredit.PendingTx, localPK [32]byte) [32]byte {
	if len(tx.Route) == 0 {
		return localPK
	}
	return tx.Route[len(tx.Route)-1]
}

// pendingForResponse mirrors ApplyResponse's own lookup rule (ops.go):
// an Outgoing-direction response resolves a PendingTx we hold on the
// remote side, an Incoming-direction response resolves one we hold
// locally.
func pendingForResponse(state *mutualcredit.State, direction mutualcredit.Direction, reqID [16]byte) (mutualcredit.PendingTx, bool) {
	if direction == mutualcredit.Outgoing {
		return state.PendingRemote(reqID)
	}
	return state.PendingLocal(reqID)
}

func wireToUint128(v mcwire.Uint128) uint128.Uint128 {
	return uint128.New(v.Lo, v.Hi)
}

var uint128Zero = uint128.Zero

// cloneCurrencies returns a fresh map of cloned ledgers, one per
// currency, so the caller can speculatively apply a batch of ops without
// risking a partial mutation of the live channel state.
func cloneCurrencies(currencies map[mcwire.Currency]*mutualcredit.State) map[mcwire.Currency]*mutualcredit.State {
	out := make(map[mcwire.Currency]*mutualcredit.State, len(currencies))
	for tag, state := range currencies {
		out[tag] = state.Clone()
	}
	return out
}

// applyCurrencyOps applies every queued or received op, in order, against
// the given working set of currency ledgers, in the stated direction.
// The caller supplies a scratch copy of the affected states (via
// mutualcredit.State.Clone) so a mid-batch failure never mutates the
// live channel — see incoming.go's stage-then-commit handling.
func applyCurrencyOps(localPK [32]byte, work map[mcwire.Currency]*mutualcredit.State, cops []mcwire.CurrencyOps, direction mutualcredit.Direction) error {
	for _, co := range cops {
		state, ok := work[co.Currency]
		if !ok {
			return ErrUnknownCurrency
		}

		for _, op := range co.Ops {
			switch op.Kind {
			case mcwire.McOpRequest:
				req := op.Request
				tx := mutualcredit.PendingTx{
					RequestID:     [16]byte(req.RequestID),
					SrcHashedLock: [32]byte(req.SrcHashedLock),
					Route:         routeToKeys(req.Route),
					DestPayment:   wireToUint128(req.DestPayment),
					InvoiceHash:   [32]byte(req.InvoiceHash),
					LeftFees:      wireToUint128(req.LeftFees),
				}
				if err := state.ApplyRequest(tx, direction); err != nil {
					return err
				}

			case mcwire.McOpResponse:
				resp := op.Response
				tx, found := pendingForResponse(state, direction, [16]byte(resp.RequestID))
				sigOK := false
				if found {
					buf := ccrypto.ResponseSigBuf(
						[16]byte(resp.RequestID),
						[32]byte(resp.SrcPlainLock),
						resp.DestPayment.Hi, resp.DestPayment.Lo,
						[]byte(co.Currency),
						resp.SerialNum.Hi, resp.SerialNum.Lo,
						[32]byte(resp.InvoiceHash),
					)
					sigOK = ccrypto.Verify(destinationKey(tx, localPK), buf, [64]byte(resp.Signature))
				}
				fields := mutualcredit.ResponseFields{
					RequestID:   [16]byte(resp.RequestID),
					DestPayment: wireToUint128(resp.DestPayment),
					LeftFees:    wireToUint128(resp.LeftFees),
					SignatureOK: sigOK,
				}
				if err := state.ApplyResponse(fields, direction); err != nil {
					return err
				}

			case mcwire.McOpCancel:
				if err := state.ApplyCancel([16]byte(op.Cancel.RequestID), direction); err != nil {
					return err
				}

			default:
				return ErrUnknownCurrency
			}
		}
	}
	return nil
}

// applyCurrencyDiff adds or removes currency ledgers on the working set,
// per §4.2.1 step 3. Adding an already-present currency or removing an
// absent one is a no-op rather than an error: both sides may race to
// propose the same diff.
func applyCurrencyDiff(work map[mcwire.Currency]*mutualcredit.State, diffs []mcwire.CurrencyDiff, defaultLocalMaxDebt, defaultRemoteMaxDebt uint128.Uint128) {
	for _, d := range diffs {
		if d.Add {
			if _, ok := work[d.Currency]; !ok {
				work[d.Currency] = mutualcredit.NewState(defaultLocalMaxDebt, defaultRemoteMaxDebt)
			}
			continue
		}
		delete(work, d.Currency)
	}
}
