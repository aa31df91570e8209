package tokenchannel

import (
	"math/big"
	"sort"

	"github.com/creditmesh/corenet/ccrypto"
	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/mutualcredit"
	"lukechampine.com/uint128"
)

// balancesHash commits to every currency's mutual-credit snapshot, sorted
// by currency tag so both sides hash in the same order regardless of Go
// map iteration order. It's the value info_hash (§6) folds in.
func balancesHash(currencies map[mcwire.Currency]*mutualcredit.State) [32]byte {
	tags := make([]string, 0, len(currencies))
	for tag := range currencies {
		tags = append(tags, string(tag))
	}
	sort.Strings(tags)

	parts := make([][]byte, 0, len(tags)*2)
	for _, tag := range tags {
		snap := currencies[mcwire.Currency(tag)].Snapshot()
		parts = append(parts, []byte(tag))
		parts = append(parts, snapshotBytes(snap))
	}
	return ccrypto.Hash256(parts...)
}

// snapshotBytes canonically encodes a mutual-credit snapshot for hashing:
// balance, in_fees, out_fees as 32-byte big-endian two's complement (they
// are i128/u256 held in math/big.Int), then the two u128 pending-debt
// scalars as 16-byte big-endian.
func snapshotBytes(snap mutualcredit.Snapshot) []byte {
	buf := make([]byte, 0, 32*3+16*2)
	buf = append(buf, bigIntTo32(snap.Balance)...)
	buf = append(buf, uint128To16(snap.LocalPendingDebt)...)
	buf = append(buf, uint128To16(snap.RemotePendingDebt)...)
	buf = append(buf, bigIntTo32(snap.InFees)...)
	buf = append(buf, bigIntTo32(snap.OutFees)...)
	return buf
}

// bigIntTo32 encodes a *big.Int (signed, via two's complement for
// negative values) into a fixed 32-byte big-endian buffer.
func bigIntTo32(v *big.Int) []byte {
	out := make([]byte, 32)
	if v.Sign() >= 0 {
		raw := v.Bytes()
		copy(out[32-len(raw):], raw)
		return out
	}

	mod := new(big.Int).Lsh(big.NewInt(1), 256)
	twos := new(big.Int).Add(v, mod)
	raw := twos.Bytes()
	if len(raw) > 32 {
		raw = raw[len(raw)-32:]
	}
	copy(out[32-len(raw):], raw)
	return out
}

func uint128To16(v uint128.Uint128) []byte {
	var buf [16]byte
	ccrypto.PutUint128BE(&buf, v.Hi, v.Lo)
	return buf[:]
}
