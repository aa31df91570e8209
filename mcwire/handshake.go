package mcwire

import "io"

// The five handshake messages of §4.4. Each carries the prev_hash that
// chains it to the message before it (empty on RequestNonce, the first of
// the five).

// RequestNonce is message 1, initiator to responder.
type RequestNonce struct {
	RandNonceI [16]byte
	PublicKeyI PublicKey
}

func (m *RequestNonce) MsgType() MessageType { return MsgRequestNonce }

func (m *RequestNonce) Encode(w io.Writer) error {
	if err := writeBytes(w, m.RandNonceI[:]); err != nil {
		return err
	}
	return writePublicKey(w, m.PublicKeyI)
}

func (m *RequestNonce) Decode(r io.Reader) error {
	b, err := readBytes(r, 16)
	if err != nil {
		return err
	}
	copy(m.RandNonceI[:], b)
	m.PublicKeyI, err = readPublicKey(r)
	return err
}

// ResponseNonce is message 2, responder to initiator.
type ResponseNonce struct {
	PrevHash   Hash256
	RandNonceR [16]byte
	PublicKeyR PublicKey
	SigR       Signature
}

func (m *ResponseNonce) MsgType() MessageType { return MsgResponseNonce }

func (m *ResponseNonce) Encode(w io.Writer) error {
	if err := writeHash(w, m.PrevHash); err != nil {
		return err
	}
	if err := writeBytes(w, m.RandNonceR[:]); err != nil {
		return err
	}
	if err := writePublicKey(w, m.PublicKeyR); err != nil {
		return err
	}
	return writeSignature(w, m.SigR)
}

func (m *ResponseNonce) Decode(r io.Reader) error {
	var err error
	if m.PrevHash, err = readHash(r); err != nil {
		return err
	}
	b, err := readBytes(r, 16)
	if err != nil {
		return err
	}
	copy(m.RandNonceR[:], b)
	if m.PublicKeyR, err = readPublicKey(r); err != nil {
		return err
	}
	m.SigR, err = readSignature(r)
	return err
}

// ExchangeActive is message 3, initiator to responder.
type ExchangeActive struct {
	PrevHash Hash256
	DHPubI   [32]byte
	SaltI    [16]byte
	SigI     Signature
}

func (m *ExchangeActive) MsgType() MessageType { return MsgExchangeActive }

func (m *ExchangeActive) Encode(w io.Writer) error {
	if err := writeHash(w, m.PrevHash); err != nil {
		return err
	}
	if err := writeBytes(w, m.DHPubI[:]); err != nil {
		return err
	}
	if err := writeBytes(w, m.SaltI[:]); err != nil {
		return err
	}
	return writeSignature(w, m.SigI)
}

func (m *ExchangeActive) Decode(r io.Reader) error {
	var err error
	if m.PrevHash, err = readHash(r); err != nil {
		return err
	}
	b, err := readBytes(r, 32)
	if err != nil {
		return err
	}
	copy(m.DHPubI[:], b)
	b, err = readBytes(r, 16)
	if err != nil {
		return err
	}
	copy(m.SaltI[:], b)
	m.SigI, err = readSignature(r)
	return err
}

// ExchangePassive is message 4, responder to initiator.
type ExchangePassive struct {
	PrevHash Hash256
	DHPubR   [32]byte
	SaltR    [16]byte
	SigR     Signature
}

func (m *ExchangePassive) MsgType() MessageType { return MsgExchangePassive }

func (m *ExchangePassive) Encode(w io.Writer) error {
	if err := writeHash(w, m.PrevHash); err != nil {
		return err
	}
	if err := writeBytes(w, m.DHPubR[:]); err != nil {
		return err
	}
	if err := writeBytes(w, m.SaltR[:]); err != nil {
		return err
	}
	return writeSignature(w, m.SigR)
}

func (m *ExchangePassive) Decode(r io.Reader) error {
	var err error
	if m.PrevHash, err = readHash(r); err != nil {
		return err
	}
	b, err := readBytes(r, 32)
	if err != nil {
		return err
	}
	copy(m.DHPubR[:], b)
	b, err = readBytes(r, 16)
	if err != nil {
		return err
	}
	copy(m.SaltR[:], b)
	m.SigR, err = readSignature(r)
	return err
}

// ChannelReady is message 5, initiator to responder, closing out the AKE.
type ChannelReady struct {
	PrevHash Hash256
	SigI     Signature
}

func (m *ChannelReady) MsgType() MessageType { return MsgChannelReady }

func (m *ChannelReady) Encode(w io.Writer) error {
	if err := writeHash(w, m.PrevHash); err != nil {
		return err
	}
	return writeSignature(w, m.SigI)
}

func (m *ChannelReady) Decode(r io.Reader) error {
	var err error
	if m.PrevHash, err = readHash(r); err != nil {
		return err
	}
	m.SigI, err = readSignature(r)
	return err
}
