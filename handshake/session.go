package handshake

import "github.com/creditmesh/corenet/ccrypto"

// Role distinguishes which side of the AKE a session is running.
type Role uint8

const (
	RoleInitiator Role = iota
	RoleResponder
)

func (r Role) String() string {
	if r == RoleInitiator {
		return "initiator"
	}
	return "responder"
}

// SessionID indexes a session by the role this node is playing and the
// peer's long-term identity key — at most one initiator session and one
// responder session may be live for a given peer at a time.
type SessionID struct {
	Role   Role
	PeerPK [32]byte
}

// stage tracks how far a session has progressed through the five
// messages of §4.4.
type stage uint8

const (
	stageAwaitResponseNonce stage = iota // initiator, sent RequestNonce
	stageAwaitExchangePassive            // initiator, sent ExchangeActive
	stageAwaitExchangeActive             // responder, sent ResponseNonce
	stageAwaitChannelReady               // responder, sent ExchangePassive
)

// Session is the mutable state of one AKE in flight. LastHash is the
// hash of whichever message this side most recently sent or accepted —
// the prev_hash the next message in the exchange must chain to.
type Session struct {
	ID       SessionID
	LastHash [32]byte

	LocalPK [32]byte
	PeerPK  [32]byte

	RandNonceLocal [16]byte
	RandNoncePeer  [16]byte

	LocalDH      ccrypto.DHPrivate
	SharedSecret [32]byte
	SaltTx       [16]byte
	SaltRx       [16]byte

	stage          stage
	timeoutCounter int
}

// SessionTable is the Go analogue of the Rust channeler's dual-indexed
// slab: sessions are looked up either by SessionID (role, peer_pk) or by
// the last_hash they're waiting on a reply to, and every tick() call
// ages every live session down, evicting any that hit zero.
type SessionTable struct {
	sessions     map[SessionID]*Session
	idxLastHash  map[[32]byte]SessionID
	timeoutTicks int
}

// NewSessionTable returns an empty table whose sessions are evicted
// after timeoutTicks calls to Tick without making progress.
func NewSessionTable(timeoutTicks int) *SessionTable {
	return &SessionTable{
		sessions:     make(map[SessionID]*Session),
		idxLastHash:  make(map[[32]byte]SessionID),
		timeoutTicks: timeoutTicks,
	}
}

// AddSession inserts s, rejecting it with ErrSessionExists if a session
// with the same SessionID is already live. A pre-existing last_hash
// collision is astronomically unlikely (it would require a SHA-512/256
// collision) and is treated as a programmer error via the same return.
func (t *SessionTable) AddSession(s *Session) error {
	if _, exists := t.sessions[s.ID]; exists {
		return ErrSessionExists
	}
	if _, exists := t.idxLastHash[s.LastHash]; exists {
		return ErrSessionExists
	}
	s.timeoutCounter = t.timeoutTicks
	t.sessions[s.ID] = s
	t.idxLastHash[s.LastHash] = s.ID
	return nil
}

// GetByLastHash returns the session currently waiting on a reply keyed
// by hash, as most incoming messages (everything but RequestNonce) are
// addressed.
func (t *SessionTable) GetByLastHash(hash [32]byte) (*Session, bool) {
	id, ok := t.idxLastHash[hash]
	if !ok {
		return nil, false
	}
	return t.sessions[id], true
}

// GetByID returns the session for a given (role, peer_pk) pair.
func (t *SessionTable) GetByID(id SessionID) (*Session, bool) {
	s, ok := t.sessions[id]
	return s, ok
}

// Advance re-indexes s under its new LastHash after it has consumed one
// message and produced the next, replacing the previous last_hash entry.
func (t *SessionTable) Advance(s *Session, oldHash [32]byte) {
	delete(t.idxLastHash, oldHash)
	t.idxLastHash[s.LastHash] = s.ID
	s.timeoutCounter = t.timeoutTicks
}

// RemoveByLastHash evicts and returns the session keyed by hash, if any
// — used once ChannelReady lands and the session graduates into the
// Channel Pool.
func (t *SessionTable) RemoveByLastHash(hash [32]byte) (*Session, bool) {
	s, ok := t.GetByLastHash(hash)
	if !ok {
		return nil, false
	}
	t.remove(s)
	return s, true
}

// RemoveByPublicKey evicts both the initiator and responder sessions (if
// any) this node has in flight toward peerPK — used when a transport
// connection to that peer drops.
func (t *SessionTable) RemoveByPublicKey(peerPK [32]byte) {
	for _, role := range []Role{RoleInitiator, RoleResponder} {
		if s, ok := t.sessions[SessionID{Role: role, PeerPK: peerPK}]; ok {
			t.remove(s)
		}
	}
}

func (t *SessionTable) remove(s *Session) {
	delete(t.sessions, s.ID)
	delete(t.idxLastHash, s.LastHash)
}

// Tick ages every live session by one and evicts whichever ones hit
// zero, returning the evicted sessions so the caller can log or notify
// on the dropped handshakes.
func (t *SessionTable) Tick() []*Session {
	var expired []*Session
	for _, s := range t.sessions {
		s.timeoutCounter--
		if s.timeoutCounter <= 0 {
			expired = append(expired, s)
		}
	}
	for _, s := range expired {
		t.remove(s)
	}
	return expired
}

// Len reports how many sessions are currently in flight.
func (t *SessionTable) Len() int {
	return len(t.sessions)
}
