package ccrypto

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// DHKeySize is the width of an X25519 public or private scalar.
const DHKeySize = 32

// DHPrivate is an ephemeral X25519 scalar generated fresh for each
// handshake (see handshake.ExchangeActive/ExchangePassive).
type DHPrivate [DHKeySize]byte

// GenerateDHPrivate draws a fresh X25519 scalar.
func GenerateDHPrivate() (DHPrivate, error) {
	var priv DHPrivate
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return DHPrivate{}, err
	}
	return priv, nil
}

// Public derives the X25519 public value for this scalar.
func (p DHPrivate) Public() ([DHKeySize]byte, error) {
	var pub [DHKeySize]byte
	out, err := curve25519.X25519(p[:], curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], out)
	return pub, nil
}

// SharedSecret computes X25519(priv, peerPub), rejecting the all-zero
// output curve25519.X25519 returns for low-order peer points.
func (p DHPrivate) SharedSecret(peerPub [DHKeySize]byte) ([DHKeySize]byte, error) {
	var secret [DHKeySize]byte
	out, err := curve25519.X25519(p[:], peerPub[:])
	if err != nil {
		return secret, ErrBadDHPublic
	}
	copy(secret[:], out)
	return secret, nil
}

// DeriveChannelKey runs HKDF-SHA512/256 over the shared secret with the
// given salt and derives a ChaCha20-Poly1305 key. §4.4 calls for two
// distinct salts per handshake, one per direction; this is reused for
// both.
func DeriveChannelKey(sharedSecret [DHKeySize]byte, salt []byte) ([KeySize]byte, error) {
	var key [KeySize]byte
	r := hkdf.New(newHash, sharedSecret[:], salt, []byte("creditmesh-channel-key"))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, err
	}
	return key, nil
}

// ChannelIDFromKey takes the 16-byte prefix of a derived channel key as
// that direction's ChannelId, per §4.4.
func ChannelIDFromKey(key [KeySize]byte) [16]byte {
	var id [16]byte
	copy(id[:], key[:16])
	return id
}
