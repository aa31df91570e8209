package mcwire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PublicKeySize, SignatureSize and HashSize mirror ccrypto's constants;
// duplicated here (rather than imported) so mcwire stays a pure
// encode/decode leaf package with no dependency on the signing code that
// consumes it — the same layering lnwire keeps from lnwallet.
const (
	PublicKeySize = 32
	SignatureSize = 64
	HashSize      = 32
	ChannelIDSize = 16
)

// PublicKey is a node's long-term Ed25519 identity key.
type PublicKey [PublicKeySize]byte

// Signature is a detached Ed25519 signature.
type Signature [SignatureSize]byte

// Hash256 is a SHA-512/256 digest.
type Hash256 [HashSize]byte

// ChannelID is the 16-byte tag prefixing every encrypted frame (§6).
type ChannelID [ChannelIDSize]byte

// RequestID identifies one in-flight payment request end to end.
type RequestID [16]byte

// Currency is an opaque ASCII tag, at most 16 bytes (§3).
type Currency string

// MaxCurrencyLen is the longest a Currency tag may be.
const MaxCurrencyLen = 16

// Uint128 is the wire encoding of a u128 field: big-endian, hi then lo.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

func writeBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return writeBytes(w, b[:])
}

func readUint16(r io.Reader) (uint16, error) {
	b, err := readBytes(r, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return writeBytes(w, b[:])
}

func readUint32(r io.Reader) (uint32, error) {
	b, err := readBytes(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return writeBytes(w, b[:])
}

func readUint64(r io.Reader) (uint64, error) {
	b, err := readBytes(r, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func writeUint128(w io.Writer, v Uint128) error {
	if err := writeUint64(w, v.Hi); err != nil {
		return err
	}
	return writeUint64(w, v.Lo)
}

func readUint128(r io.Reader) (Uint128, error) {
	hi, err := readUint64(r)
	if err != nil {
		return Uint128{}, err
	}
	lo, err := readUint64(r)
	if err != nil {
		return Uint128{}, err
	}
	return Uint128{Hi: hi, Lo: lo}, nil
}

func writePublicKey(w io.Writer, pk PublicKey) error {
	return writeBytes(w, pk[:])
}

func readPublicKey(r io.Reader) (PublicKey, error) {
	var pk PublicKey
	b, err := readBytes(r, PublicKeySize)
	if err != nil {
		return pk, err
	}
	copy(pk[:], b)
	return pk, nil
}

func writeSignature(w io.Writer, sig Signature) error {
	return writeBytes(w, sig[:])
}

func readSignature(r io.Reader) (Signature, error) {
	var sig Signature
	b, err := readBytes(r, SignatureSize)
	if err != nil {
		return sig, err
	}
	copy(sig[:], b)
	return sig, nil
}

func writeHash(w io.Writer, h Hash256) error {
	return writeBytes(w, h[:])
}

func readHash(r io.Reader) (Hash256, error) {
	var h Hash256
	b, err := readBytes(r, HashSize)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func writeRequestID(w io.Writer, id RequestID) error {
	return writeBytes(w, id[:])
}

func readRequestID(r io.Reader) (RequestID, error) {
	var id RequestID
	b, err := readBytes(r, 16)
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

func writeCurrency(w io.Writer, c Currency) error {
	if len(c) > MaxCurrencyLen {
		return fmt.Errorf("mcwire: currency tag %q exceeds %d bytes",
			c, MaxCurrencyLen)
	}
	if err := writeBytes(w, []byte{byte(len(c))}); err != nil {
		return err
	}
	return writeBytes(w, []byte(c))
}

func readCurrency(r io.Reader) (Currency, error) {
	lenBuf, err := readBytes(r, 1)
	if err != nil {
		return "", err
	}
	n := int(lenBuf[0])
	if n > MaxCurrencyLen {
		return "", fmt.Errorf("mcwire: currency tag length %d exceeds %d bytes",
			n, MaxCurrencyLen)
	}
	b, err := readBytes(r, n)
	if err != nil {
		return "", err
	}
	return Currency(b), nil
}

func writeVarBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	return writeBytes(w, b)
}

func readVarBytes(r io.Reader, max uint32) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n > max {
		return nil, fmt.Errorf("mcwire: var-length field of %d bytes "+
			"exceeds max %d", n, max)
	}
	return readBytes(r, int(n))
}
