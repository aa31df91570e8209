package mutualcredit

import (
	"math/big"
	"testing"

	"lukechampine.com/uint128"
)

func maxDebt() uint128.Uint128 {
	return uint128.From64(1_000_000)
}

func sampleTx(id byte, dest, fees uint64) PendingTx {
	var reqID [16]byte
	reqID[0] = id
	return PendingTx{
		RequestID:   reqID,
		DestPayment: uint128.From64(dest),
		LeftFees:    uint128.From64(fees),
	}
}

// TestApplyRequestGrowsPendingDebt exercises the invariant-1/invariant-2
// accounting half of Testable Property 2.
func TestApplyRequestGrowsPendingDebt(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())

	tx := sampleTx(1, 100, 5)
	if err := s.ApplyRequest(tx, Outgoing); err != nil {
		t.Fatalf("ApplyRequest: %v", err)
	}

	snap := s.Snapshot()
	want := uint128.From64(105)
	if snap.LocalPendingDebt.Cmp(want) != 0 {
		t.Fatalf("local pending debt = %v, want %v", snap.LocalPendingDebt, want)
	}
	if !s.CheckPendingSums() {
		t.Fatalf("pending sums out of sync with ledger totals")
	}
}

func TestApplyRequestDuplicateRejected(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())
	tx := sampleTx(1, 10, 0)
	if err := s.ApplyRequest(tx, Incoming); err != nil {
		t.Fatalf("first ApplyRequest: %v", err)
	}
	if err := s.ApplyRequest(tx, Incoming); err != ErrDuplicateRequestID {
		t.Fatalf("expected ErrDuplicateRequestID, got %v", err)
	}
}

func TestApplyRequestExceedsMaxDebtRejected(t *testing.T) {
	small := uint128.From64(50)
	s := NewState(small, small)

	tx := sampleTx(1, 100, 0)
	if err := s.ApplyRequest(tx, Outgoing); err != ErrMaxDebtExceeded {
		t.Fatalf("expected ErrMaxDebtExceeded, got %v", err)
	}
	// A rejected request must leave no trace behind.
	if !s.CheckPendingSums() {
		t.Fatalf("rejected request left pending debt inconsistent")
	}
}

func TestApplyRequestClosedSideRejected(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())
	s.CloseLocalRequests()

	tx := sampleTx(1, 1, 0)
	if err := s.ApplyRequest(tx, Outgoing); err != ErrRequestsClosed {
		t.Fatalf("expected ErrRequestsClosed, got %v", err)
	}
}

// TestApplyResponseShiftsBalance exercises Testable Property 1: after a
// request/response pair, the balance moves by exactly dest_payment+left_fees
// and pending debt returns to zero. Mirrors
// original_source/components/funder/src/mutual_credit/tests/request_response_send_funds.rs:
// an outgoing-direction request answered via the incoming-processing path
// must leave balance == -(dest_payment+left_fees) with left_fees credited
// to out_fees, not in_fees.
func TestApplyResponseShiftsBalance(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())

	tx := sampleTx(1, 100, 5)
	if err := s.ApplyRequest(tx, Outgoing); err != nil {
		t.Fatalf("ApplyRequest: %v", err)
	}

	resp := ResponseFields{
		RequestID:   tx.RequestID,
		DestPayment: tx.DestPayment,
		LeftFees:    tx.LeftFees,
		SignatureOK: true,
	}
	if err := s.ApplyResponse(resp, Incoming); err != nil {
		t.Fatalf("ApplyResponse: %v", err)
	}

	snap := s.Snapshot()
	if snap.LocalPendingDebt.Cmp(uint128.Zero) != 0 {
		t.Fatalf("local pending debt not cleared: %v", snap.LocalPendingDebt)
	}
	if snap.Balance.Int64() != -105 {
		t.Fatalf("balance = %v, want -105", snap.Balance)
	}
	if snap.OutFees.Int64() != 5 {
		t.Fatalf("out fees = %v, want 5", snap.OutFees)
	}
}

// TestApplyResponseCreditsInFeesOnForwardedRequest covers the other
// direction pairing left untested by TestApplyResponseShiftsBalance: a
// request we received (Incoming) that we answer ourselves (an Outgoing
// response to the friend who sent it) must move balance toward us and
// credit in_fees, not out_fees.
func TestApplyResponseCreditsInFeesOnForwardedRequest(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())

	tx := sampleTx(1, 100, 5)
	if err := s.ApplyRequest(tx, Incoming); err != nil {
		t.Fatalf("ApplyRequest: %v", err)
	}

	resp := ResponseFields{
		RequestID:   tx.RequestID,
		DestPayment: tx.DestPayment,
		LeftFees:    tx.LeftFees,
		SignatureOK: true,
	}
	if err := s.ApplyResponse(resp, Outgoing); err != nil {
		t.Fatalf("ApplyResponse: %v", err)
	}

	snap := s.Snapshot()
	if snap.RemotePendingDebt.Cmp(uint128.Zero) != 0 {
		t.Fatalf("remote pending debt not cleared: %v", snap.RemotePendingDebt)
	}
	if snap.Balance.Int64() != 105 {
		t.Fatalf("balance = %v, want 105", snap.Balance)
	}
	if snap.InFees.Int64() != 5 {
		t.Fatalf("in fees = %v, want 5", snap.InFees)
	}
}

func TestApplyResponseBadSignatureRejected(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())
	tx := sampleTx(1, 10, 0)
	if err := s.ApplyRequest(tx, Incoming); err != nil {
		t.Fatalf("ApplyRequest: %v", err)
	}

	resp := ResponseFields{RequestID: tx.RequestID, SignatureOK: false}
	if err := s.ApplyResponse(resp, Outgoing); err != ErrBadResponseSignature {
		t.Fatalf("expected ErrBadResponseSignature, got %v", err)
	}
}

func TestApplyResponseUnknownRequestID(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())
	var stray [16]byte
	stray[0] = 0xFF

	resp := ResponseFields{RequestID: stray, SignatureOK: true}
	if err := s.ApplyResponse(resp, Outgoing); err != ErrUnknownRequestID {
		t.Fatalf("expected ErrUnknownRequestID, got %v", err)
	}
}

func TestApplyCancelUnwindsPendingDebtOnly(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())
	tx := sampleTx(1, 50, 1)
	if err := s.ApplyRequest(tx, Outgoing); err != nil {
		t.Fatalf("ApplyRequest: %v", err)
	}

	if err := s.ApplyCancel(tx.RequestID, Incoming); err != nil {
		t.Fatalf("ApplyCancel: %v", err)
	}

	snap := s.Snapshot()
	if snap.LocalPendingDebt.Cmp(uint128.Zero) != 0 {
		t.Fatalf("local pending debt not cleared after cancel: %v", snap.LocalPendingDebt)
	}
	if snap.Balance.Sign() != 0 {
		t.Fatalf("cancel must not move balance, got %v", snap.Balance)
	}
}

// TestHasCapacityMatchesApplyRequest exercises the router's forwarding
// pre-check: HasCapacity must agree with whatever ApplyRequest would
// itself decide, without mutating the ledger either way.
func TestHasCapacityMatchesApplyRequest(t *testing.T) {
	small := uint128.From64(50)
	s := NewState(small, small)

	fits := sampleTx(1, 40, 0)
	if !s.HasCapacity(Outgoing, fits.exposure()) {
		t.Fatalf("HasCapacity(Outgoing) = false, want true for exposure within cap")
	}
	if err := s.ApplyRequest(fits, Outgoing); err != nil {
		t.Fatalf("ApplyRequest unexpectedly failed after HasCapacity said yes: %v", err)
	}

	tooBig := sampleTx(2, 100, 0)
	if s.HasCapacity(Outgoing, tooBig.exposure()) {
		t.Fatalf("HasCapacity(Outgoing) = true, want false for exposure exceeding remaining cap")
	}
	if err := s.ApplyRequest(tooBig, Outgoing); err != ErrMaxDebtExceeded {
		t.Fatalf("expected ErrMaxDebtExceeded, got %v", err)
	}
}

func TestSetMaxDebtBelowPendingRejected(t *testing.T) {
	s := NewState(maxDebt(), maxDebt())
	tx := sampleTx(1, 500, 0)
	if err := s.ApplyRequest(tx, Outgoing); err != nil {
		t.Fatalf("ApplyRequest: %v", err)
	}

	if err := s.SetLocalMaxDebt(uint128.From64(10)); err != ErrMaxDebtBelowPending {
		t.Fatalf("expected ErrMaxDebtBelowPending, got %v", err)
	}
}

// TestSymmetricPeersAgree is a miniature version of Testable Property 1:
// two independently constructed ledgers, playing opposite roles for the
// same sequence of McOps, must land on balances that are exact negatives
// of each other and on matching fee totals from each side's own vantage.
func TestSymmetricPeersAgree(t *testing.T) {
	alice := NewState(maxDebt(), maxDebt())
	bob := NewState(maxDebt(), maxDebt())

	tx := sampleTx(9, 200, 10)

	// Alice forwards the request outward; Bob receives it.
	if err := alice.ApplyRequest(tx, Outgoing); err != nil {
		t.Fatalf("alice ApplyRequest: %v", err)
	}
	if err := bob.ApplyRequest(tx, Incoming); err != nil {
		t.Fatalf("bob ApplyRequest: %v", err)
	}

	resp := ResponseFields{
		RequestID:   tx.RequestID,
		DestPayment: tx.DestPayment,
		LeftFees:    tx.LeftFees,
		SignatureOK: true,
	}
	if err := alice.ApplyResponse(resp, Incoming); err != nil {
		t.Fatalf("alice ApplyResponse: %v", err)
	}
	if err := bob.ApplyResponse(resp, Outgoing); err != nil {
		t.Fatalf("bob ApplyResponse: %v", err)
	}

	aliceSnap := alice.Snapshot()
	bobSnap := bob.Snapshot()

	negBob := new(big.Int).Neg(bobSnap.Balance)
	if aliceSnap.Balance.Cmp(negBob) != 0 {
		t.Fatalf("balances not symmetric: alice=%v bob=%v", aliceSnap.Balance, bobSnap.Balance)
	}
}
