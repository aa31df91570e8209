// Package ccrypto collects the cryptographic primitives shared by every
// other package in this module: Ed25519 identity signing, SHA-512/256
// hashing, ChaCha20-Poly1305 sealing, and the X25519+HKDF key derivation
// used by the handshake. None of it is protocol-aware; callers build the
// canonical buffers (see sigbuf.go) and pass the resulting bytes in here.
package ccrypto

import (
	"crypto/rand"

	"golang.org/x/crypto/ed25519"
)

// PublicKeySize is the length in bytes of a node's long-term identity key.
const PublicKeySize = ed25519.PublicKeySize

// SignatureSize is the length in bytes of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// PrivateKey is a long-term Ed25519 signing key.
type PrivateKey struct {
	priv ed25519.PrivateKey
}

// GenerateIdentity creates a fresh random Ed25519 keypair.
func GenerateIdentity() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{priv: priv}, nil
}

// IdentityFromSeed rebuilds a private key from its 32-byte seed, the value
// Seed returns.
func IdentityFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrBadSeedLength
	}
	return &PrivateKey{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// Seed returns the 32-byte seed that IdentityFromSeed can reconstruct this
// key from.
func (p *PrivateKey) Seed() []byte {
	return p.priv.Seed()
}

// PublicKey returns the public half of this keypair.
func (p *PrivateKey) PublicKey() [PublicKeySize]byte {
	var pk [PublicKeySize]byte
	copy(pk[:], p.priv.Public().(ed25519.PublicKey))
	return pk
}

// Sign produces a detached signature over buf. Callers pass one of the
// canonical buffers built in sigbuf.go, never raw message fields.
func (p *PrivateKey) Sign(buf []byte) [SignatureSize]byte {
	var sig [SignatureSize]byte
	copy(sig[:], ed25519.Sign(p.priv, buf))
	return sig
}

// Verify checks that sig is a valid Ed25519 signature over buf under pk.
func Verify(pk [PublicKeySize]byte, buf []byte, sig [SignatureSize]byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pk[:]), buf, sig[:])
}
