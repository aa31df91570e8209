package mcwire

import "io"

// MutationsUpdate is the gossiped capacity/price update verified by
// indexverifier (§4.7).
type MutationsUpdate struct {
	NodePublicKey   PublicKey
	Mutations       []byte
	TimeHash        Hash256
	SessionID       [16]byte
	Counter         uint64
	RandNonce       [16]byte
	ExpansionChain  [][]Hash256
	Signature       Signature
}

func (m *MutationsUpdate) MsgType() MessageType { return MsgMutationsUpdate }

const maxMutationsLen = 1 << 18
const maxExpansionListLen = 4096
const maxExpansionChainLen = 4096

func (m *MutationsUpdate) Encode(w io.Writer) error {
	if err := writePublicKey(w, m.NodePublicKey); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.Mutations); err != nil {
		return err
	}
	if err := writeHash(w, m.TimeHash); err != nil {
		return err
	}
	if err := writeBytes(w, m.SessionID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.Counter); err != nil {
		return err
	}
	if err := writeBytes(w, m.RandNonce[:]); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(m.ExpansionChain))); err != nil {
		return err
	}
	for _, list := range m.ExpansionChain {
		if err := writeUint32(w, uint32(len(list))); err != nil {
			return err
		}
		for _, h := range list {
			if err := writeHash(w, h); err != nil {
				return err
			}
		}
	}
	return writeSignature(w, m.Signature)
}

func (m *MutationsUpdate) Decode(r io.Reader) error {
	var err error
	if m.NodePublicKey, err = readPublicKey(r); err != nil {
		return err
	}
	if m.Mutations, err = readVarBytes(r, maxMutationsLen); err != nil {
		return err
	}
	if m.TimeHash, err = readHash(r); err != nil {
		return err
	}
	b, err := readBytes(r, 16)
	if err != nil {
		return err
	}
	copy(m.SessionID[:], b)
	if m.Counter, err = readUint64(r); err != nil {
		return err
	}
	b, err = readBytes(r, 16)
	if err != nil {
		return err
	}
	copy(m.RandNonce[:], b)

	chainLen, err := readUint32(r)
	if err != nil {
		return err
	}
	if chainLen > maxExpansionChainLen {
		return errExpansionChainTooLong
	}
	m.ExpansionChain = make([][]Hash256, chainLen)
	for i := range m.ExpansionChain {
		listLen, err := readUint32(r)
		if err != nil {
			return err
		}
		if listLen > maxExpansionListLen {
			return errExpansionListTooLong
		}
		list := make([]Hash256, listLen)
		for j := range list {
			if list[j], err = readHash(r); err != nil {
				return err
			}
		}
		m.ExpansionChain[i] = list
	}

	m.Signature, err = readSignature(r)
	return err
}
