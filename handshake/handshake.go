// Package handshake implements the five-message authenticated key
// exchange of §4.4: RequestNonce -> ResponseNonce -> ExchangeActive ->
// ExchangePassive -> ChannelReady. Each message after the first carries
// a prev_hash chaining it to the one before, and a signature over the
// canonical buffers in ccrypto/sigbuf.go. Once
// ChannelReady lands, both sides have independently derived the same
// pair of (channel_id, key) values for their send and receive
// directions, ready to hand to the Channel Pool.
package handshake

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"

	"github.com/creditmesh/corenet/ccrypto"
	"github.com/creditmesh/corenet/mcwire"
)

// ChannelKeys is the outcome of a completed handshake: the channel ids
// and ChaCha20-Poly1305 keys for this node's send and receive
// directions toward the peer the session was run with.
type ChannelKeys struct {
	PeerPK       [32]byte
	TxChannelID  [16]byte
	TxKey        [32]byte
	RxChannelID  [16]byte
	RxKey        [32]byte
}

// Machine drives the AKE for every peer this node handshakes with. It
// holds no network code of its own — callers (the connection layer)
// feed it inbound messages and send whatever it returns.
type Machine struct {
	identity IdentityClient
	table    *SessionTable
}

// defaultTimeoutTicks mirrors the Rust channeler's default session
// timeout of 300 ticks.
const defaultTimeoutTicks = 300

// New builds a Machine that signs with identity and evicts a session
// once defaultTimeoutTicks calls to Tick pass without it progressing.
func New(identity IdentityClient) *Machine {
	return &Machine{
		identity: identity,
		table:    NewSessionTable(defaultTimeoutTicks),
	}
}

// Tick ages every in-flight session by one, per §4.4's tick-based
// expiry, and returns whichever sessions were evicted.
func (m *Machine) Tick() []*Session {
	return m.table.Tick()
}

// SessionCount reports how many handshakes are currently in flight.
func (m *Machine) SessionCount() int {
	return m.table.Len()
}

// Cancel drops any in-flight sessions toward peerPK, e.g. because the
// underlying transport connection closed.
func (m *Machine) Cancel(peerPK [32]byte) {
	m.table.RemoveByPublicKey(peerPK)
}

func hashMessage(msg mcwire.Message) ([32]byte, error) {
	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		return [32]byte{}, err
	}
	return ccrypto.Hash256(buf.Bytes()), nil
}

func randomBytes16() ([16]byte, error) {
	var b [16]byte
	_, err := io.ReadFull(rand.Reader, b[:])
	return b, err
}

// InitiateHandshake starts an AKE toward peerPK as the initiator,
// returning the RequestNonce to send. Returns ErrSessionExists if an
// initiator session toward peerPK is already in flight.
func (m *Machine) InitiateHandshake(_ context.Context, peerPK [32]byte) (*mcwire.RequestNonce, error) {
	randNonceI, err := randomBytes16()
	if err != nil {
		return nil, err
	}

	req := &mcwire.RequestNonce{
		RandNonceI: randNonceI,
		PublicKeyI: mcwire.PublicKey(m.identity.PublicKey()),
	}
	hash, err := hashMessage(req)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:             SessionID{Role: RoleInitiator, PeerPK: peerPK},
		LastHash:       hash,
		LocalPK:        m.identity.PublicKey(),
		PeerPK:         peerPK,
		RandNonceLocal: randNonceI,
		stage:          stageAwaitResponseNonce,
	}
	if err := m.table.AddSession(session); err != nil {
		return nil, err
	}
	return req, nil
}

// HandleRequestNonce processes an inbound RequestNonce as the
// responder, returning the ResponseNonce to send back.
func (m *Machine) HandleRequestNonce(ctx context.Context, req *mcwire.RequestNonce) (*mcwire.ResponseNonce, error) {
	peerPK := [32]byte(req.PublicKeyI)
	reqHash, err := hashMessage(req)
	if err != nil {
		return nil, err
	}

	randNonceR, err := randomBytes16()
	if err != nil {
		return nil, err
	}

	resp := &mcwire.ResponseNonce{
		PrevHash:   mcwire.Hash256(reqHash),
		RandNonceR: randNonceR,
		PublicKeyR: mcwire.PublicKey(m.identity.PublicKey()),
	}
	sigBuf := ccrypto.ResponseNonceSigBuf(reqHash, randNonceR, m.identity.PublicKey())
	sig, err := m.identity.Sign(ctx, sigBuf)
	if err != nil {
		return nil, err
	}
	resp.SigR = mcwire.Signature(sig)

	newHash, err := hashMessage(resp)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:             SessionID{Role: RoleResponder, PeerPK: peerPK},
		LastHash:       newHash,
		LocalPK:        m.identity.PublicKey(),
		PeerPK:         peerPK,
		RandNonceLocal: randNonceR,
		RandNoncePeer:  req.RandNonceI,
		stage:          stageAwaitExchangeActive,
	}
	if err := m.table.AddSession(session); err != nil {
		return nil, err
	}
	return resp, nil
}

// HandleResponseNonce processes an inbound ResponseNonce as the
// initiator, returning the ExchangeActive to send back.
func (m *Machine) HandleResponseNonce(ctx context.Context, resp *mcwire.ResponseNonce) (*mcwire.ExchangeActive, error) {
	session, ok := m.table.GetByLastHash([32]byte(resp.PrevHash))
	if !ok || session.ID.Role != RoleInitiator || session.stage != stageAwaitResponseNonce {
		return nil, ErrUnknownSession
	}
	if [32]byte(resp.PublicKeyR) != session.PeerPK {
		return nil, ErrWrongResponder
	}

	sigBuf := ccrypto.ResponseNonceSigBuf([32]byte(resp.PrevHash), resp.RandNonceR, [32]byte(resp.PublicKeyR))
	if !ccrypto.Verify(session.PeerPK, sigBuf, [64]byte(resp.SigR)) {
		return nil, ErrBadSignature
	}

	localDH, err := ccrypto.GenerateDHPrivate()
	if err != nil {
		return nil, err
	}
	dhPubI, err := localDH.Public()
	if err != nil {
		return nil, err
	}
	saltI, err := randomBytes16()
	if err != nil {
		return nil, err
	}

	newHash, err := hashMessage(resp)
	if err != nil {
		return nil, err
	}

	ex := &mcwire.ExchangeActive{
		PrevHash: mcwire.Hash256(newHash),
		DHPubI:   dhPubI,
		SaltI:    saltI,
	}
	sigBuf = ccrypto.ExchangeActiveSigBuf(newHash, dhPubI, saltI)
	sig, err := m.identity.Sign(ctx, sigBuf)
	if err != nil {
		return nil, err
	}
	ex.SigI = mcwire.Signature(sig)

	finalHash, err := hashMessage(ex)
	if err != nil {
		return nil, err
	}

	oldHash := session.LastHash
	session.RandNoncePeer = resp.RandNonceR
	session.LocalDH = localDH
	session.SaltTx = saltI
	session.LastHash = finalHash
	session.stage = stageAwaitExchangePassive
	m.table.Advance(session, oldHash)

	return ex, nil
}

// HandleExchangeActive processes an inbound ExchangeActive as the
// responder, returning the ExchangePassive to send back.
func (m *Machine) HandleExchangeActive(ctx context.Context, ex *mcwire.ExchangeActive) (*mcwire.ExchangePassive, error) {
	session, ok := m.table.GetByLastHash([32]byte(ex.PrevHash))
	if !ok || session.ID.Role != RoleResponder || session.stage != stageAwaitExchangeActive {
		return nil, ErrUnknownSession
	}

	sigBuf := ccrypto.ExchangeActiveSigBuf([32]byte(ex.PrevHash), ex.DHPubI, ex.SaltI)
	if !ccrypto.Verify(session.PeerPK, sigBuf, [64]byte(ex.SigI)) {
		return nil, ErrBadSignature
	}

	localDH, err := ccrypto.GenerateDHPrivate()
	if err != nil {
		return nil, err
	}
	dhPubR, err := localDH.Public()
	if err != nil {
		return nil, err
	}
	sharedSecret, err := localDH.SharedSecret(ex.DHPubI)
	if err != nil {
		return nil, err
	}
	saltR, err := randomBytes16()
	if err != nil {
		return nil, err
	}

	newHash, err := hashMessage(ex)
	if err != nil {
		return nil, err
	}

	passive := &mcwire.ExchangePassive{
		PrevHash: mcwire.Hash256(newHash),
		DHPubR:   dhPubR,
		SaltR:    saltR,
	}
	sigBuf = ccrypto.ExchangePassiveSigBuf(newHash, dhPubR, saltR)
	sig, err := m.identity.Sign(ctx, sigBuf)
	if err != nil {
		return nil, err
	}
	passive.SigR = mcwire.Signature(sig)

	finalHash, err := hashMessage(passive)
	if err != nil {
		return nil, err
	}

	oldHash := session.LastHash
	session.LocalDH = localDH
	session.SharedSecret = sharedSecret
	session.SaltTx = saltR
	session.SaltRx = ex.SaltI
	session.LastHash = finalHash
	session.stage = stageAwaitChannelReady
	m.table.Advance(session, oldHash)

	return passive, nil
}

// HandleExchangePassive processes an inbound ExchangePassive as the
// initiator, finalizing the derived channel keys and returning the
// closing ChannelReady to send back. The session is retired on return;
// the caller hands keys off to the Channel Pool.
func (m *Machine) HandleExchangePassive(ctx context.Context, passive *mcwire.ExchangePassive) (*mcwire.ChannelReady, ChannelKeys, error) {
	session, ok := m.table.GetByLastHash([32]byte(passive.PrevHash))
	if !ok || session.ID.Role != RoleInitiator || session.stage != stageAwaitExchangePassive {
		return nil, ChannelKeys{}, ErrUnknownSession
	}

	sigBuf := ccrypto.ExchangePassiveSigBuf([32]byte(passive.PrevHash), passive.DHPubR, passive.SaltR)
	if !ccrypto.Verify(session.PeerPK, sigBuf, [64]byte(passive.SigR)) {
		return nil, ChannelKeys{}, ErrBadSignature
	}

	sharedSecret, err := session.LocalDH.SharedSecret(passive.DHPubR)
	if err != nil {
		return nil, ChannelKeys{}, err
	}

	txKey, err := ccrypto.DeriveChannelKey(sharedSecret, session.SaltTx[:])
	if err != nil {
		return nil, ChannelKeys{}, err
	}
	rxKey, err := ccrypto.DeriveChannelKey(sharedSecret, passive.SaltR[:])
	if err != nil {
		return nil, ChannelKeys{}, err
	}

	newHash, err := hashMessage(passive)
	if err != nil {
		return nil, ChannelKeys{}, err
	}

	ready := &mcwire.ChannelReady{PrevHash: mcwire.Hash256(newHash)}
	sigBuf = ccrypto.ChannelReadySigBuf(newHash)
	sig, err := m.identity.Sign(ctx, sigBuf)
	if err != nil {
		return nil, ChannelKeys{}, err
	}
	ready.SigI = mcwire.Signature(sig)

	m.table.RemoveByLastHash(session.LastHash)

	keys := ChannelKeys{
		PeerPK:      session.PeerPK,
		TxChannelID: ccrypto.ChannelIDFromKey(txKey),
		TxKey:       txKey,
		RxChannelID: ccrypto.ChannelIDFromKey(rxKey),
		RxKey:       rxKey,
	}
	return ready, keys, nil
}

// HandleChannelReady processes the closing ChannelReady as the
// responder, finalizing the derived channel keys. The session is
// retired on return; the caller hands keys off to the Channel Pool.
func (m *Machine) HandleChannelReady(_ context.Context, ready *mcwire.ChannelReady) (ChannelKeys, error) {
	session, ok := m.table.GetByLastHash([32]byte(ready.PrevHash))
	if !ok || session.ID.Role != RoleResponder || session.stage != stageAwaitChannelReady {
		return ChannelKeys{}, ErrUnknownSession
	}

	sigBuf := ccrypto.ChannelReadySigBuf([32]byte(ready.PrevHash))
	if !ccrypto.Verify(session.PeerPK, sigBuf, [64]byte(ready.SigI)) {
		return ChannelKeys{}, ErrBadSignature
	}

	txKey, err := ccrypto.DeriveChannelKey(session.SharedSecret, session.SaltTx[:])
	if err != nil {
		return ChannelKeys{}, err
	}
	rxKey, err := ccrypto.DeriveChannelKey(session.SharedSecret, session.SaltRx[:])
	if err != nil {
		return ChannelKeys{}, err
	}

	m.table.RemoveByLastHash(session.LastHash)

	return ChannelKeys{
		PeerPK:      session.PeerPK,
		TxChannelID: ccrypto.ChannelIDFromKey(txKey),
		TxKey:       txKey,
		RxChannelID: ccrypto.ChannelIDFromKey(rxKey),
		RxKey:       rxKey,
	}, nil
}
