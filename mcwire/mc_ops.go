package mcwire

import (
	"fmt"
	"io"
)

// McOpKind tags which variant of McOp follows on the wire.
type McOpKind uint8

const (
	McOpRequest McOpKind = iota + 1
	McOpResponse
	McOpCancel
)

// McRequest is a payment request hop, carrying the remaining route from
// this node forward (§3, §4.3.1).
type McRequest struct {
	RequestID    RequestID
	Route        []PublicKey
	DestPayment  Uint128
	LeftFees     Uint128
	InvoiceHash  Hash256
	SrcHashedLock Hash256
}

const maxRouteLen = 1024

func (r *McRequest) Encode(w io.Writer) error {
	if err := writeRequestID(w, r.RequestID); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(r.Route))); err != nil {
		return err
	}
	for _, hop := range r.Route {
		if err := writePublicKey(w, hop); err != nil {
			return err
		}
	}
	if err := writeUint128(w, r.DestPayment); err != nil {
		return err
	}
	if err := writeUint128(w, r.LeftFees); err != nil {
		return err
	}
	if err := writeHash(w, r.InvoiceHash); err != nil {
		return err
	}
	return writeHash(w, r.SrcHashedLock)
}

func (r *McRequest) Decode(reader io.Reader) error {
	var err error
	if r.RequestID, err = readRequestID(reader); err != nil {
		return err
	}
	n, err := readUint32(reader)
	if err != nil {
		return err
	}
	if n > maxRouteLen {
		return fmt.Errorf("mcwire: route of %d hops exceeds max %d", n, maxRouteLen)
	}
	r.Route = make([]PublicKey, n)
	for i := range r.Route {
		if r.Route[i], err = readPublicKey(reader); err != nil {
			return err
		}
	}
	if r.DestPayment, err = readUint128(reader); err != nil {
		return err
	}
	if r.LeftFees, err = readUint128(reader); err != nil {
		return err
	}
	if r.InvoiceHash, err = readHash(reader); err != nil {
		return err
	}
	r.SrcHashedLock, err = readHash(reader)
	return err
}

// McResponse closes out a request with the destination's signed receipt
// material (§3, §4.1).
type McResponse struct {
	RequestID    RequestID
	DestPayment  Uint128
	LeftFees     Uint128
	SrcPlainLock Hash256
	SerialNum    Uint128
	InvoiceHash  Hash256
	Signature    Signature
}

func (r *McResponse) Encode(w io.Writer) error {
	if err := writeRequestID(w, r.RequestID); err != nil {
		return err
	}
	if err := writeUint128(w, r.DestPayment); err != nil {
		return err
	}
	if err := writeUint128(w, r.LeftFees); err != nil {
		return err
	}
	if err := writeHash(w, r.SrcPlainLock); err != nil {
		return err
	}
	if err := writeUint128(w, r.SerialNum); err != nil {
		return err
	}
	if err := writeHash(w, r.InvoiceHash); err != nil {
		return err
	}
	return writeSignature(w, r.Signature)
}

func (r *McResponse) Decode(reader io.Reader) error {
	var err error
	if r.RequestID, err = readRequestID(reader); err != nil {
		return err
	}
	if r.DestPayment, err = readUint128(reader); err != nil {
		return err
	}
	if r.LeftFees, err = readUint128(reader); err != nil {
		return err
	}
	if r.SrcPlainLock, err = readHash(reader); err != nil {
		return err
	}
	if r.SerialNum, err = readUint128(reader); err != nil {
		return err
	}
	if r.InvoiceHash, err = readHash(reader); err != nil {
		return err
	}
	r.Signature, err = readSignature(reader)
	return err
}

// McCancel unwinds a request's frozen credit without moving balance
// (§3, §4.1).
type McCancel struct {
	RequestID RequestID
}

func (c *McCancel) Encode(w io.Writer) error {
	return writeRequestID(w, c.RequestID)
}

func (c *McCancel) Decode(reader io.Reader) error {
	var err error
	c.RequestID, err = readRequestID(reader)
	return err
}

// McOp is the tagged union of the three operation kinds a MoveToken may
// batch per currency (§3).
type McOp struct {
	Kind     McOpKind
	Request  *McRequest
	Response *McResponse
	Cancel   *McCancel
}

func (op *McOp) Encode(w io.Writer) error {
	if err := writeBytes(w, []byte{byte(op.Kind)}); err != nil {
		return err
	}
	switch op.Kind {
	case McOpRequest:
		return op.Request.Encode(w)
	case McOpResponse:
		return op.Response.Encode(w)
	case McOpCancel:
		return op.Cancel.Encode(w)
	default:
		return fmt.Errorf("mcwire: unknown McOp kind %d", op.Kind)
	}
}

func (op *McOp) Decode(reader io.Reader) error {
	kindBuf, err := readBytes(reader, 1)
	if err != nil {
		return err
	}
	op.Kind = McOpKind(kindBuf[0])
	switch op.Kind {
	case McOpRequest:
		op.Request = &McRequest{}
		return op.Request.Decode(reader)
	case McOpResponse:
		op.Response = &McResponse{}
		return op.Response.Decode(reader)
	case McOpCancel:
		op.Cancel = &McCancel{}
		return op.Cancel.Decode(reader)
	default:
		return fmt.Errorf("mcwire: unknown McOp kind %d", op.Kind)
	}
}

// CurrencyOps pairs a currency with the ordered list of operations the
// MoveToken applies for it (§3's currencies_operations).
type CurrencyOps struct {
	Currency Currency
	Ops      []McOp
}

const maxOpsPerCurrency = 100000

func writeCurrencyOps(w io.Writer, cops []CurrencyOps) error {
	if err := writeUint32(w, uint32(len(cops))); err != nil {
		return err
	}
	for _, co := range cops {
		if err := writeCurrency(w, co.Currency); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(co.Ops))); err != nil {
			return err
		}
		for i := range co.Ops {
			if err := co.Ops[i].Encode(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func readCurrencyOps(r io.Reader) ([]CurrencyOps, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]CurrencyOps, n)
	for i := range out {
		if out[i].Currency, err = readCurrency(r); err != nil {
			return nil, err
		}
		opCount, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		if opCount > maxOpsPerCurrency {
			return nil, fmt.Errorf("mcwire: %d ops for currency %q exceeds max %d",
				opCount, out[i].Currency, maxOpsPerCurrency)
		}
		out[i].Ops = make([]McOp, opCount)
		for j := range out[i].Ops {
			if err := out[i].Ops[j].Decode(r); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
