package ccrypto

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the width of the little-endian counter nonce described in
// §4.6: 12 bytes, incremented once per sent message.
const NonceSize = chacha20poly1305.NonceSize

// KeySize is the width of a ChaCha20-Poly1305 symmetric key.
const KeySize = chacha20poly1305.KeySize

// CounterNonce encodes a monotonically increasing counter as the 12-byte
// little-endian nonce §4.6 requires.
func CounterNonce(counter uint64) [NonceSize]byte {
	var n [NonceSize]byte
	binary.LittleEndian.PutUint64(n[:8], counter)
	// top 4 bytes stay zero: 2^64 messages per key is beyond this
	// channel pool's key lifetime (see channelpool's carousel rotation).
	return n
}

// Seal encrypts and authenticates plaintext under key with the given
// counter nonce, returning ciphertext‖tag.
func Seal(key [KeySize]byte, counter uint64, plaintext, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	nonce := CounterNonce(counter)
	return aead.Seal(nil, nonce[:], plaintext, additionalData), nil
}

// Open verifies and decrypts a ciphertext‖tag produced by Seal.
func Open(key [KeySize]byte, counter uint64, ciphertext, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.Overhead() {
		return nil, ErrShortCiphertext
	}
	nonce := CounterNonce(counter)
	return aead.Open(nil, nonce[:], ciphertext, additionalData)
}
