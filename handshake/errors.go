package handshake

import "errors"

var (
	// ErrUnknownSession is returned when a message's prev_hash (or, for
	// RequestNonce, peer public key) doesn't match any live session.
	ErrUnknownSession = errors.New("handshake: unknown session")

	// ErrSessionExists is returned by the initiator path when a session
	// for that (role, peer_pk) pair is already in flight.
	ErrSessionExists = errors.New("handshake: session already in flight")

	// ErrBadSignature is returned when a peer's signature over the
	// canonical §4.4 buffer fails to verify.
	ErrBadSignature = errors.New("handshake: signature verification failed")

	// ErrWrongResponder is returned when a ResponseNonce's public key
	// doesn't match the peer the initiator dialed.
	ErrWrongResponder = errors.New("handshake: response_nonce from unexpected peer")

	// ErrSessionExpired names a message arriving for a session Tick has
	// already evicted. Machine does not return it: an evicted session is
	// gone from the table, so such a message gets ErrUnknownSession.
	ErrSessionExpired = errors.New("handshake: session expired")
)
