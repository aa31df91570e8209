package router

import (
	"context"

	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/tokenchannel"
)

// HandleIncomingMoveToken feeds an inbound MoveToken from friendPK
// through its token channel and, on acceptance, fans every batched
// McOp out to HandleIncomingRequest/HandleIncomingResponse/
// HandleIncomingCancel — the router-state half of an incoming MoveToken
// applies atomically before any outgoing MoveToken is scheduled, per
// §5's ordering guarantee 4.
func (r *Router) HandleIncomingMoveToken(ctx context.Context, friendPK [32]byte, m *mcwire.MoveToken) (tokenchannel.IncomingOutcome, error) {
	r.mu.Lock()
	f, ok := r.friendLocked(friendPK)
	r.mu.Unlock()
	if !ok {
		return tokenchannel.IncomingOutcome{}, ErrUnknownFriend
	}

	outcome, err := f.channel.HandleIncoming(ctx, m)
	if err != nil {
		return outcome, err
	}

	if outcome.WentInconsistent {
		r.metrics.resetsEntered.Inc()
		return outcome, nil
	}
	if !outcome.Accepted {
		return outcome, nil
	}

	for _, co := range m.CurrenciesOps {
		for _, op := range co.Ops {
			switch op.Kind {
			case mcwire.McOpRequest:
				r.HandleIncomingRequest(friendPK, co.Currency, op.Request)
			case mcwire.McOpResponse:
				r.HandleIncomingResponse(friendPK, co.Currency, op.Response)
			case mcwire.McOpCancel:
				r.HandleIncomingCancel(friendPK, co.Currency, op.Cancel)
			}
		}
	}

	return outcome, nil
}
