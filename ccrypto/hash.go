package ccrypto

import "crypto/sha512"

// HashSize is the output width of the SHA-512/256 digest used throughout
// this module for info_hash, reset_token, time_hash and tick-hashes.
const HashSize = sha512.Size256

// Hash256 computes SHA-512/256 over the concatenation of parts. It is the
// single hash primitive used by every canonical buffer in this module; the
// variadic form lets callers build a buffer out of its typed fields without
// an intermediate bytes.Buffer at every call site.
func Hash256(parts ...[]byte) [HashSize]byte {
	h := sha512.New512_256()
	for _, p := range parts {
		h.Write(p) //nolint:errcheck // hash.Hash.Write never errors
	}
	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PutUint128BE writes v into an existing 16-byte big-endian buffer, the
// encoding used for move_token_counter_be128 and dest_payment_be128 in the
// canonical signature buffers of §6.
func PutUint128BE(dst *[16]byte, hi, lo uint64) {
	for i := 0; i < 8; i++ {
		dst[7-i] = byte(hi >> (8 * i))
		dst[15-i] = byte(lo >> (8 * i))
	}
}

// Uint64BE encodes v as an 8-byte big-endian buffer, used for counter_be64
// and len_be64 fields.
func Uint64BE(v uint64) [8]byte {
	var out [8]byte
	for i := 0; i < 8; i++ {
		out[7-i] = byte(v >> (8 * i))
	}
	return out
}
