package ccrypto

import "errors"

var (
	// ErrBadSeedLength is returned when a seed passed to
	// IdentityFromSeed isn't exactly ed25519.SeedSize bytes.
	ErrBadSeedLength = errors.New("ccrypto: identity seed must be 32 bytes")

	// ErrBadDHPublic is returned when a peer's advertised X25519 public
	// value fails the all-zero low-order-point check.
	ErrBadDHPublic = errors.New("ccrypto: invalid X25519 public value")

	// ErrShortCiphertext is returned when an AEAD-sealed frame is too
	// short to contain a tag.
	ErrShortCiphertext = errors.New("ccrypto: ciphertext shorter than AEAD tag")
)
