package ccrypto

import "crypto/rand"

// RandomBytes fills and returns an n-byte slice of CSPRNG output, used for
// handshake nonces and the random-padding prefix of §6's encrypted frame
// format.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// RandomPaddingLength picks a padding length in [0, maxLen) by reducing
// two random bytes (a 16-bit value) modulo maxLen, keeping message
// lengths from leaking through a fixed padding size.
func RandomPaddingLength(maxLen int) (int, error) {
	if maxLen <= 0 {
		return 0, nil
	}
	b, err := RandomBytes(2)
	if err != nil {
		return 0, err
	}
	v := int(b[0])<<8 | int(b[1])
	return v % maxLen, nil
}
