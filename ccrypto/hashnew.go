package ccrypto

import (
	"crypto/sha512"
	"hash"
)

// newHash constructs the hash.Hash used by HKDF; kept as a single
// indirection point so every HKDF call in this module uses the same
// underlying primitive as Hash256.
func newHash() hash.Hash {
	return sha512.New512_256()
}
