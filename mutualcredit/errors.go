package mutualcredit

import "errors"

// Error kinds surfaced by mutual credit operations. When one comes up
// while a token channel applies an incoming MoveToken, the channel drops
// the whole MoveToken and goes Inconsistent; when one comes up while it
// assembles an outgoing MoveToken, EmitOutgoing returns it to its caller.
var (
	// ErrDuplicateRequestID is returned when apply_request sees a
	// request_id already present on the target side.
	ErrDuplicateRequestID = errors.New("mutualcredit: duplicate request id")

	// ErrMaxDebtExceeded is returned when an apply_request would push
	// either side's pending exposure past its configured max debt.
	ErrMaxDebtExceeded = errors.New("mutualcredit: request would exceed max debt")

	// ErrRequestsClosed is returned when apply_request targets a side
	// that has stopped accepting new requests (e.g. currency being
	// removed).
	ErrRequestsClosed = errors.New("mutualcredit: requests closed for this side")

	// ErrUnknownRequestID is returned by apply_response/apply_cancel
	// when no matching PendingTx exists. Per §7 this is expected after
	// a reset and the caller should drop the message silently rather
	// than treat it as an invariant violation.
	ErrUnknownRequestID = errors.New("mutualcredit: unknown request id")

	// ErrBadResponseSignature is returned when apply_response's
	// signature fails to verify under the destination's public key.
	ErrBadResponseSignature = errors.New("mutualcredit: invalid response signature")

	// ErrMaxDebtBelowPending is returned by SetLocalMaxDebt/
	// SetRemoteMaxDebt when the new cap would sit below the side's
	// current pending exposure.
	ErrMaxDebtBelowPending = errors.New("mutualcredit: max debt below current pending exposure")
)
