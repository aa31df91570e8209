package router

import (
	"math/big"

	"lukechampine.com/uint128"

	"github.com/creditmesh/corenet/mcwire"
)

// Rate computes the fee this node charges to forward dest_payment through
// a given currency's channel. It is deliberately an interface: §9 notes
// the exact formula is not part of the cross-implementation contract, so
// callers can swap in their own fee schedule per currency or per friend.
type Rate interface {
	HopFee(currency mcwire.Currency, amount uint128.Uint128) uint128.Uint128
}

// LinearRate implements the source's default formula, named (but not
// mandated) in §9: fee = add + mul*amount/2^40. The multiply-then-shift
// is done in math/big to avoid overflowing a 128-bit intermediate when
// Mul and amount are both large.
type LinearRate struct {
	Add uint128.Uint128
	Mul uint128.Uint128
}

const rateShift = 40

// HopFee implements Rate.
func (l LinearRate) HopFee(_ mcwire.Currency, amount uint128.Uint128) uint128.Uint128 {
	product := new(big.Int).Mul(l.Mul.Big(), amount.Big())
	product.Rsh(product, rateShift)
	fee := new(big.Int).Add(l.Add.Big(), product)
	return uint128.FromBig(fee)
}
