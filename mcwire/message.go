// Package mcwire defines the wire types exchanged between friends and
// with index servers: the message framing (mirroring lnwire's
// Encode/Decode/MsgType contract), the primitive identifiers of §3, and
// the concrete message bodies of §4.2, §4.3, §4.4 and §4.7.
package mcwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxMessagePayload bounds a single frame's payload, matching the 1 MiB
// ceiling §6 places on relay/TCP frames.
const MaxMessagePayload = 1 << 20

// MessageType is the 2-byte big-endian discriminant prefixing every
// message body.
type MessageType uint16

const (
	MsgMoveToken MessageType = iota + 1
	MsgRelaysUpdate
	MsgRequestNonce
	MsgResponseNonce
	MsgExchangeActive
	MsgExchangePassive
	MsgChannelReady
	MsgMutationsUpdate
	MsgResetTerms
)

// Message is implemented by every wire type in this package.
type Message interface {
	Decode(io.Reader) error
	Encode(io.Writer) error
	MsgType() MessageType
}

// UnknownMessageError is returned by ReadMessage for a MessageType this
// build doesn't know how to construct.
type UnknownMessageError struct {
	Type MessageType
}

func (u *UnknownMessageError) Error() string {
	return fmt.Sprintf("mcwire: unknown message type %d", u.Type)
}

func makeEmptyMessage(t MessageType) (Message, error) {
	switch t {
	case MsgMoveToken:
		return &MoveToken{}, nil
	case MsgRelaysUpdate:
		return &RelaysUpdate{}, nil
	case MsgRequestNonce:
		return &RequestNonce{}, nil
	case MsgResponseNonce:
		return &ResponseNonce{}, nil
	case MsgExchangeActive:
		return &ExchangeActive{}, nil
	case MsgExchangePassive:
		return &ExchangePassive{}, nil
	case MsgChannelReady:
		return &ChannelReady{}, nil
	case MsgMutationsUpdate:
		return &MutationsUpdate{}, nil
	case MsgResetTerms:
		return &ResetTerms{}, nil
	default:
		return nil, &UnknownMessageError{Type: t}
	}
}

// WriteMessage frames msg as a 2-byte type tag followed by its encoded
// body and writes it to w, returning the number of bytes written.
func WriteMessage(w io.Writer, msg Message) (int, error) {
	var body bytes.Buffer
	if err := msg.Encode(&body); err != nil {
		return 0, err
	}
	if body.Len() > MaxMessagePayload {
		return 0, fmt.Errorf("mcwire: encoded message is %d bytes, "+
			"exceeds max payload %d", body.Len(), MaxMessagePayload)
	}

	total := 0
	var typeBuf [2]byte
	binary.BigEndian.PutUint16(typeBuf[:], uint16(msg.MsgType()))
	n, err := w.Write(typeBuf[:])
	total += n
	if err != nil {
		return total, err
	}

	n, err = w.Write(body.Bytes())
	total += n
	return total, err
}

// ReadMessage reads a 2-byte type tag then decodes the matching body from
// r.
func ReadMessage(r io.Reader) (Message, error) {
	var typeBuf [2]byte
	if _, err := io.ReadFull(r, typeBuf[:]); err != nil {
		return nil, err
	}

	msg, err := makeEmptyMessage(MessageType(binary.BigEndian.Uint16(typeBuf[:])))
	if err != nil {
		return nil, err
	}
	if err := msg.Decode(r); err != nil {
		return nil, err
	}
	return msg, nil
}
