package handshake

import (
	"context"
	"testing"

	"github.com/creditmesh/corenet/ccrypto"
)

type testIdentity struct {
	priv *ccrypto.PrivateKey
}

func newTestIdentity(t *testing.T) *testIdentity {
	t.Helper()
	priv, err := ccrypto.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	return &testIdentity{priv: priv}
}

func (id *testIdentity) Sign(_ context.Context, buf []byte) ([64]byte, error) {
	return id.priv.Sign(buf), nil
}

func (id *testIdentity) PublicKey() [32]byte { return id.priv.PublicKey() }

// runHandshake drives the full five-message exchange between an
// initiator and a responder machine and returns the ChannelKeys each
// side ends up with.
func runHandshake(t *testing.T, initMachine, respMachine *Machine, peerOfInit [32]byte) (ChannelKeys, ChannelKeys) {
	t.Helper()
	ctx := context.Background()

	req, err := initMachine.InitiateHandshake(ctx, peerOfInit)
	if err != nil {
		t.Fatalf("InitiateHandshake: %v", err)
	}

	resp, err := respMachine.HandleRequestNonce(ctx, req)
	if err != nil {
		t.Fatalf("HandleRequestNonce: %v", err)
	}

	active, err := initMachine.HandleResponseNonce(ctx, resp)
	if err != nil {
		t.Fatalf("HandleResponseNonce: %v", err)
	}

	passive, err := respMachine.HandleExchangeActive(ctx, active)
	if err != nil {
		t.Fatalf("HandleExchangeActive: %v", err)
	}

	ready, initKeys, err := initMachine.HandleExchangePassive(ctx, passive)
	if err != nil {
		t.Fatalf("HandleExchangePassive: %v", err)
	}

	respKeys, err := respMachine.HandleChannelReady(ctx, ready)
	if err != nil {
		t.Fatalf("HandleChannelReady: %v", err)
	}

	return initKeys, respKeys
}

func TestHandshakeDerivesMatchingCrossedKeys(t *testing.T) {
	initID := newTestIdentity(t)
	respID := newTestIdentity(t)

	initMachine := New(initID)
	respMachine := New(respID)

	initKeys, respKeys := runHandshake(t, initMachine, respMachine, respID.PublicKey())

	if initKeys.TxKey != respKeys.RxKey {
		t.Fatalf("initiator tx key != responder rx key")
	}
	if initKeys.RxKey != respKeys.TxKey {
		t.Fatalf("initiator rx key != responder tx key")
	}
	if initKeys.TxChannelID != respKeys.RxChannelID {
		t.Fatalf("initiator tx channel id != responder rx channel id")
	}
	if initKeys.RxChannelID != respKeys.TxChannelID {
		t.Fatalf("initiator rx channel id != responder tx channel id")
	}
	if initKeys.TxKey == initKeys.RxKey {
		t.Fatalf("tx and rx keys must differ")
	}

	if initMachine.SessionCount() != 0 {
		t.Fatalf("initiator session not retired after ChannelReady, count = %d", initMachine.SessionCount())
	}
	if respMachine.SessionCount() != 0 {
		t.Fatalf("responder session not retired after ChannelReady, count = %d", respMachine.SessionCount())
	}
}

func TestInitiateHandshakeRejectsDuplicateInFlight(t *testing.T) {
	initID := newTestIdentity(t)
	respID := newTestIdentity(t)
	initMachine := New(initID)

	ctx := context.Background()
	if _, err := initMachine.InitiateHandshake(ctx, respID.PublicKey()); err != nil {
		t.Fatalf("first InitiateHandshake: %v", err)
	}
	if _, err := initMachine.InitiateHandshake(ctx, respID.PublicKey()); err != ErrSessionExists {
		t.Fatalf("err = %v, want ErrSessionExists", err)
	}
}

func TestHandleResponseNonceRejectsTamperedSignature(t *testing.T) {
	initID := newTestIdentity(t)
	respID := newTestIdentity(t)
	initMachine := New(initID)
	respMachine := New(respID)
	ctx := context.Background()

	req, err := initMachine.InitiateHandshake(ctx, respID.PublicKey())
	if err != nil {
		t.Fatalf("InitiateHandshake: %v", err)
	}
	resp, err := respMachine.HandleRequestNonce(ctx, req)
	if err != nil {
		t.Fatalf("HandleRequestNonce: %v", err)
	}

	resp.RandNonceR[0] ^= 0xFF // tamper after signing

	if _, err := initMachine.HandleResponseNonce(ctx, resp); err != ErrBadSignature {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestTickEvictsStaleSessions(t *testing.T) {
	initID := newTestIdentity(t)
	respID := newTestIdentity(t)
	initMachine := New(initID)
	initMachine.table = NewSessionTable(2)

	ctx := context.Background()
	if _, err := initMachine.InitiateHandshake(ctx, respID.PublicKey()); err != nil {
		t.Fatalf("InitiateHandshake: %v", err)
	}

	initMachine.Tick()
	if initMachine.SessionCount() != 1 {
		t.Fatalf("session evicted too early")
	}
	expired := initMachine.Tick()
	if len(expired) != 1 || initMachine.SessionCount() != 0 {
		t.Fatalf("session not evicted after timeout, count = %d", initMachine.SessionCount())
	}
}
