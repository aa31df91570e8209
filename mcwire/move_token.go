package mcwire

import "io"

// CurrencyDiff toggles whether a currency is included in a channel,
// applied before the per-currency operations (§4.2.1 step 3).
type CurrencyDiff struct {
	Currency Currency
	Add      bool
}

// RelayAddress is one relay server this node (or its peer) is reachable
// at, carried by MoveToken's optional relay-diff list so relay sets stay
// in sync with the credit channel (§4.3.3).
type RelayAddress struct {
	RelayPublicKey PublicKey
	Address        string
	Generation     uint64
	Remove         bool
}

// MoveToken is the signed envelope carrying a batch of mutual-credit
// operations between two friends (§3).
type MoveToken struct {
	OldToken         Signature
	CurrenciesOps    []CurrencyOps
	CurrenciesDiff   []CurrencyDiff
	RelaysDiff       []RelayAddress
	InfoHash         Hash256
	MoveTokenCounter uint64
	NewToken         Signature
}

func (m *MoveToken) MsgType() MessageType { return MsgMoveToken }

func (m *MoveToken) Encode(w io.Writer) error {
	if err := writeSignature(w, m.OldToken); err != nil {
		return err
	}
	if err := writeCurrencyOps(w, m.CurrenciesOps); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(m.CurrenciesDiff))); err != nil {
		return err
	}
	for _, d := range m.CurrenciesDiff {
		if err := writeCurrency(w, d.Currency); err != nil {
			return err
		}
		flag := byte(0)
		if d.Add {
			flag = 1
		}
		if err := writeBytes(w, []byte{flag}); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(m.RelaysDiff))); err != nil {
		return err
	}
	for _, rl := range m.RelaysDiff {
		if err := writePublicKey(w, rl.RelayPublicKey); err != nil {
			return err
		}
		if err := writeVarBytes(w, []byte(rl.Address)); err != nil {
			return err
		}
		if err := writeUint64(w, rl.Generation); err != nil {
			return err
		}
		flag := byte(0)
		if rl.Remove {
			flag = 1
		}
		if err := writeBytes(w, []byte{flag}); err != nil {
			return err
		}
	}
	if err := writeHash(w, m.InfoHash); err != nil {
		return err
	}
	if err := writeUint64(w, m.MoveTokenCounter); err != nil {
		return err
	}
	return writeSignature(w, m.NewToken)
}

func (m *MoveToken) Decode(r io.Reader) error {
	var err error
	if m.OldToken, err = readSignature(r); err != nil {
		return err
	}
	if m.CurrenciesOps, err = readCurrencyOps(r); err != nil {
		return err
	}

	diffCount, err := readUint32(r)
	if err != nil {
		return err
	}
	m.CurrenciesDiff = make([]CurrencyDiff, diffCount)
	for i := range m.CurrenciesDiff {
		if m.CurrenciesDiff[i].Currency, err = readCurrency(r); err != nil {
			return err
		}
		flagBuf, err := readBytes(r, 1)
		if err != nil {
			return err
		}
		m.CurrenciesDiff[i].Add = flagBuf[0] != 0
	}

	relayCount, err := readUint32(r)
	if err != nil {
		return err
	}
	m.RelaysDiff = make([]RelayAddress, relayCount)
	for i := range m.RelaysDiff {
		if m.RelaysDiff[i].RelayPublicKey, err = readPublicKey(r); err != nil {
			return err
		}
		addrBytes, err := readVarBytes(r, 4096)
		if err != nil {
			return err
		}
		m.RelaysDiff[i].Address = string(addrBytes)
		if m.RelaysDiff[i].Generation, err = readUint64(r); err != nil {
			return err
		}
		flagBuf, err := readBytes(r, 1)
		if err != nil {
			return err
		}
		m.RelaysDiff[i].Remove = flagBuf[0] != 0
	}

	if m.InfoHash, err = readHash(r); err != nil {
		return err
	}
	if m.MoveTokenCounter, err = readUint64(r); err != nil {
		return err
	}
	m.NewToken, err = readSignature(r)
	return err
}

// RelaysUpdate is the standalone friend-message used to push relay set
// changes outside of a MoveToken batch, per §4.3.3.
type RelaysUpdate struct {
	Relays []RelayAddress
}

func (r *RelaysUpdate) MsgType() MessageType { return MsgRelaysUpdate }

func (r *RelaysUpdate) Encode(w io.Writer) error {
	if err := writeUint32(w, uint32(len(r.Relays))); err != nil {
		return err
	}
	for _, rl := range r.Relays {
		if err := writePublicKey(w, rl.RelayPublicKey); err != nil {
			return err
		}
		if err := writeVarBytes(w, []byte(rl.Address)); err != nil {
			return err
		}
		if err := writeUint64(w, rl.Generation); err != nil {
			return err
		}
		flag := byte(0)
		if rl.Remove {
			flag = 1
		}
		if err := writeBytes(w, []byte{flag}); err != nil {
			return err
		}
	}
	return nil
}

func (r *RelaysUpdate) Decode(reader io.Reader) error {
	n, err := readUint32(reader)
	if err != nil {
		return err
	}
	r.Relays = make([]RelayAddress, n)
	for i := range r.Relays {
		if r.Relays[i].RelayPublicKey, err = readPublicKey(reader); err != nil {
			return err
		}
		addrBytes, err := readVarBytes(reader, 4096)
		if err != nil {
			return err
		}
		r.Relays[i].Address = string(addrBytes)
		if r.Relays[i].Generation, err = readUint64(reader); err != nil {
			return err
		}
		flagBuf, err := readBytes(reader, 1)
		if err != nil {
			return err
		}
		r.Relays[i].Remove = flagBuf[0] != 0
	}
	return nil
}
