package tokenchannel

import "github.com/go-errors/errors"

// Error kinds a Channel method can return to its caller. Per spec.md §7,
// a caller never sees the mutual-credit-level errors directly: any
// invariant violation or signature failure while applying an incoming
// MoveToken is absorbed internally and surfaces only as the channel
// flipping to Inconsistent.
var (
	// ErrNotTokenHolder is returned by EmitOutgoing when the channel is
	// not in StatusConsistentIn (we don't currently hold the token).
	ErrNotTokenHolder = errors.New("tokenchannel: cannot emit, remote friend holds the token")

	// ErrChannelInconsistent is returned by EmitOutgoing while the
	// channel is in the Inconsistent status.
	ErrChannelInconsistent = errors.New("tokenchannel: channel is inconsistent, reset required")

	// ErrUnknownCurrency is returned when an operation names a currency
	// this channel hasn't agreed to include.
	ErrUnknownCurrency = errors.New("tokenchannel: unknown currency")

	// ErrStaleReset is returned when a ResetTerms is offered with a
	// move_token_counter that doesn't advance the current counter by
	// exactly one.
	ErrStaleReset = errors.New("tokenchannel: reset terms counter mismatch")

	// ErrBadResetSignature is returned when a remote ResetTerms fails
	// signature verification.
	ErrBadResetSignature = errors.New("tokenchannel: invalid reset terms signature")

	// ErrNotInconsistent is returned when ReceiveResetTerms/AcceptReset
	// is called on a channel that is not currently Inconsistent, and by
	// AcceptReset when no friend reset terms have been received.
	ErrNotInconsistent = errors.New("tokenchannel: channel is not inconsistent")
)
