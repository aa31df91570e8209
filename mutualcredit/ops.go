package mutualcredit

import "lukechampine.com/uint128"

// ApplyRequest implements §4.1's apply_request. direction = Incoming means
// the friend sent us this request (it lands in pending_transactions.remote
// and grows remote_pending_debt, guarded by invariant 2); direction =
// Outgoing means we originated or are forwarding it (pending_transactions.local,
// invariant 1).
func (s *State) ApplyRequest(tx PendingTx, direction Direction) error {
	exposure := tx.exposure()

	switch direction {
	case Incoming:
		if !s.remoteRequestsOpen {
			return ErrRequestsClosed
		}
		if _, exists := s.pendingRemote[tx.RequestID]; exists {
			return ErrDuplicateRequestID
		}

		newRemotePending := s.remotePendingDebt.Add(exposure)
		saved := s.remotePendingDebt
		s.remotePendingDebt = newRemotePending
		if !s.checkRemoteInvariant() {
			s.remotePendingDebt = saved
			return ErrMaxDebtExceeded
		}
		s.pendingRemote[tx.RequestID] = tx
		return nil

	case Outgoing:
		if !s.localRequestsOpen {
			return ErrRequestsClosed
		}
		if _, exists := s.pendingLocal[tx.RequestID]; exists {
			return ErrDuplicateRequestID
		}

		newLocalPending := s.localPendingDebt.Add(exposure)
		saved := s.localPendingDebt
		s.localPendingDebt = newLocalPending
		if !s.checkLocalInvariant() {
			s.localPendingDebt = saved
			return ErrMaxDebtExceeded
		}
		s.pendingLocal[tx.RequestID] = tx
		return nil

	default:
		panic("mutualcredit: unknown direction")
	}
}

// VerifyResponseSignature is supplied by the caller (tokenchannel), which
// has access to ccrypto and the canonical response buffer; ApplyResponse
// takes the verification result rather than importing ccrypto itself, to
// keep this package free of signing concerns.
type ResponseFields struct {
	RequestID    [16]byte
	DestPayment  uint128.Uint128
	LeftFees     uint128.Uint128
	SignatureOK  bool
}

// ApplyResponse implements §4.1's apply_response. An outgoing response
// (direction = Outgoing) consumes a pending tx we hold on the remote side
// (a request our friend sent us that we're now answering); an incoming
// response (direction = Incoming) consumes one we hold locally (a request
// we forwarded, now being answered back to us).
func (s *State) ApplyResponse(resp ResponseFields, direction Direction) error {
	if !resp.SignatureOK {
		return ErrBadResponseSignature
	}

	switch direction {
	case Outgoing:
		tx, ok := s.pendingRemote[resp.RequestID]
		if !ok {
			return ErrUnknownRequestID
		}
		exposure := tx.exposure()
		s.remotePendingDebt = s.remotePendingDebt.Sub(exposure)
		delete(s.pendingRemote, resp.RequestID)

		// We are answering a request the friend sent us: the friend
		// pays us on this hop, so balance shifts toward us and
		// left_fees count as fees earned.
		shift := resp.DestPayment.Add(resp.LeftFees)
		s.balance.Add(s.balance, shift.Big())
		s.inFees.Add(s.inFees, resp.LeftFees.Big())
		return nil

	case Incoming:
		tx, ok := s.pendingLocal[resp.RequestID]
		if !ok {
			return ErrUnknownRequestID
		}
		exposure := tx.exposure()
		s.localPendingDebt = s.localPendingDebt.Sub(exposure)
		delete(s.pendingLocal, resp.RequestID)

		// The friend is answering a request we sent: we are the payer
		// on this hop, so balance shifts toward the friend and
		// left_fees count as fees paid out.
		shift := resp.DestPayment.Add(resp.LeftFees)
		s.balance.Sub(s.balance, shift.Big())
		s.outFees.Add(s.outFees, resp.LeftFees.Big())
		return nil

	default:
		panic("mutualcredit: unknown direction")
	}
}

// ApplyCancel implements §4.1's apply_cancel: unwind the matching
// PendingTx's exposure with no balance movement.
func (s *State) ApplyCancel(requestID [16]byte, direction Direction) error {
	switch direction {
	case Outgoing:
		tx, ok := s.pendingRemote[requestID]
		if !ok {
			return ErrUnknownRequestID
		}
		s.remotePendingDebt = s.remotePendingDebt.Sub(tx.exposure())
		delete(s.pendingRemote, requestID)
		return nil

	case Incoming:
		tx, ok := s.pendingLocal[requestID]
		if !ok {
			return ErrUnknownRequestID
		}
		s.localPendingDebt = s.localPendingDebt.Sub(tx.exposure())
		delete(s.pendingLocal, requestID)
		return nil

	default:
		panic("mutualcredit: unknown direction")
	}
}

// SetLocalMaxDebt updates our own configured cap. Per §4.1 it may not be
// set below the side's current pending exposure.
func (s *State) SetLocalMaxDebt(newCap uint128.Uint128) error {
	if newCap.Cmp(s.localPendingDebt) < 0 {
		return ErrMaxDebtBelowPending
	}
	s.localMaxDebt = newCap
	return nil
}

// SetRemoteMaxDebt updates the friend's configured cap.
func (s *State) SetRemoteMaxDebt(newCap uint128.Uint128) error {
	if newCap.Cmp(s.remotePendingDebt) < 0 {
		return ErrMaxDebtBelowPending
	}
	s.remoteMaxDebt = newCap
	return nil
}

// PendingLocal returns the PendingTx for a locally-originated request, if
// still outstanding.
func (s *State) PendingLocal(requestID [16]byte) (PendingTx, bool) {
	tx, ok := s.pendingLocal[requestID]
	return tx, ok
}

// PendingRemote returns the PendingTx for a remote-originated request, if
// still outstanding.
func (s *State) PendingRemote(requestID [16]byte) (PendingTx, bool) {
	tx, ok := s.pendingRemote[requestID]
	return tx, ok
}

// CheckPendingSums implements Testable Property 2: local_pending_debt
// must equal the sum of dest_payment+left_fees over pending_transactions.local,
// and symmetrically for remote.
func (s *State) CheckPendingSums() bool {
	localSum := uint128.Zero
	for _, tx := range s.pendingLocal {
		localSum = localSum.Add(tx.exposure())
	}
	if localSum.Cmp(s.localPendingDebt) != 0 {
		return false
	}

	remoteSum := uint128.Zero
	for _, tx := range s.pendingRemote {
		remoteSum = remoteSum.Add(tx.exposure())
	}
	return remoteSum.Cmp(s.remotePendingDebt) == 0
}
