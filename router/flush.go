package router

import (
	"context"

	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/tokenchannel"
)

// Flush implements §4.3.4: for friendPK, if we currently hold the token
// and the friend is online, drain its queued work (user requests,
// forwarded requests, backwards ops) up to the configured per-token
// budget, stage it onto the token channel, and emit the outgoing
// MoveToken. Returns (nil, nil) when there's nothing to do right now —
// not yet our turn, friend offline, or no queued work — which the
// caller should treat as "nothing to send", not an error.
func (r *Router) Flush(ctx context.Context, friendPK [32]byte) (*mcwire.MoveToken, error) {
	r.mu.Lock()
	f, ok := r.friendLocked(friendPK)
	if !ok {
		r.mu.Unlock()
		return nil, ErrUnknownFriend
	}
	if !f.online || f.channel.Status() != tokenchannel.StatusConsistentIn {
		r.mu.Unlock()
		return nil, nil
	}

	budget := r.cfg.MaxOpsPerFlush
	queued := r.drainInto(f, budget)
	r.mu.Unlock()

	if !queued {
		return nil, nil
	}

	return f.channel.EmitOutgoing(ctx)
}

// drainInto moves up to budget operations from f's three queues onto
// its token channel's pending batch, in the order user requests, then
// forwarded requests, then backwards ops; each queue is drained as far as
// the budget allows before the next is started. Reports whether anything
// was queued.
func (r *Router) drainInto(f *friendState, budget int) bool {
	queued := false

	for budget > 0 && len(f.pendingUserRequests) > 0 {
		pr := f.pendingUserRequests[0]
		f.pendingUserRequests = f.pendingUserRequests[1:]
		f.channel.QueueOp(pr.currency, mcwire.McOp{Kind: mcwire.McOpRequest, Request: pr.req})
		budget--
		queued = true
	}

	for budget > 0 && len(f.pendingRequests) > 0 {
		pr := f.pendingRequests[0]
		f.pendingRequests = f.pendingRequests[1:]
		f.channel.QueueOp(pr.currency, mcwire.McOp{Kind: mcwire.McOpRequest, Request: pr.req})
		budget--
		queued = true
	}

	for budget > 0 && len(f.pendingBackwards) > 0 {
		op := f.pendingBackwards[0]
		f.pendingBackwards = f.pendingBackwards[1:]
		switch {
		case op.Response != nil:
			f.channel.QueueOp(op.Currency, mcwire.McOp{Kind: mcwire.McOpResponse, Response: op.Response})
		case op.Cancel != nil:
			f.channel.QueueOp(op.Currency, mcwire.McOp{Kind: mcwire.McOpCancel, Cancel: op.Cancel})
		}
		budget--
		queued = true
	}

	return queued
}
