package mcwire

import "io"

// CurrencyBalance is one currency's proposed post-reset ledger state,
// carried inside a ResetTerms message (§4.2.3's balances_for_reset).
// balance/in_fees/out_fees are arbitrary-precision signed/unsigned
// integers (i128/u256) so they travel as length-prefixed big-endian
// byte strings rather than a fixed width.
type CurrencyBalance struct {
	Currency          Currency
	Balance           []byte
	LocalPendingDebt  Uint128
	RemotePendingDebt Uint128
	InFees            []byte
	OutFees           []byte
}

const maxBigIntBytes = 64

// ResetTerms is the signed offer a party makes upon entering Inconsistent
// (§4.2.3): the token it proposes as the reset chain's new old_token, the
// move_token_counter it expects to continue from, and the balances both
// sides should agree to reset to.
type ResetTerms struct {
	ResetToken       Signature
	MoveTokenCounter uint64
	Balances         []CurrencyBalance
}

func (r *ResetTerms) MsgType() MessageType { return MsgResetTerms }

func (r *ResetTerms) Encode(w io.Writer) error {
	if err := writeSignature(w, r.ResetToken); err != nil {
		return err
	}
	if err := writeUint64(w, r.MoveTokenCounter); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(r.Balances))); err != nil {
		return err
	}
	for _, cb := range r.Balances {
		if err := writeCurrency(w, cb.Currency); err != nil {
			return err
		}
		if err := writeVarBytes(w, cb.Balance); err != nil {
			return err
		}
		if err := writeUint128(w, cb.LocalPendingDebt); err != nil {
			return err
		}
		if err := writeUint128(w, cb.RemotePendingDebt); err != nil {
			return err
		}
		if err := writeVarBytes(w, cb.InFees); err != nil {
			return err
		}
		if err := writeVarBytes(w, cb.OutFees); err != nil {
			return err
		}
	}
	return nil
}

func (r *ResetTerms) Decode(reader io.Reader) error {
	var err error
	if r.ResetToken, err = readSignature(reader); err != nil {
		return err
	}
	if r.MoveTokenCounter, err = readUint64(reader); err != nil {
		return err
	}
	n, err := readUint32(reader)
	if err != nil {
		return err
	}
	r.Balances = make([]CurrencyBalance, n)
	for i := range r.Balances {
		cb := &r.Balances[i]
		if cb.Currency, err = readCurrency(reader); err != nil {
			return err
		}
		if cb.Balance, err = readVarBytes(reader, maxBigIntBytes); err != nil {
			return err
		}
		if cb.LocalPendingDebt, err = readUint128(reader); err != nil {
			return err
		}
		if cb.RemotePendingDebt, err = readUint128(reader); err != nil {
			return err
		}
		if cb.InFees, err = readVarBytes(reader, maxBigIntBytes); err != nil {
			return err
		}
		if cb.OutFees, err = readVarBytes(reader, maxBigIntBytes); err != nil {
			return err
		}
	}
	return nil
}
