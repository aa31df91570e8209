package mcwire

import (
	"bytes"
	"reflect"
	"testing"
)

func someRequestID() RequestID {
	var id RequestID
	id[0] = 0x03
	return id
}

// TestMoveTokenEncodeDecode checks that a MoveToken carrying a mix of
// request/response/cancel ops round-trips byte for byte through
// WriteMessage/ReadMessage.
func TestMoveTokenEncodeDecode(t *testing.T) {
	mt := &MoveToken{
		OldToken: Signature{0x01},
		CurrenciesOps: []CurrencyOps{
			{
				Currency: "FST",
				Ops: []McOp{
					{
						Kind: McOpRequest,
						Request: &McRequest{
							RequestID:   someRequestID(),
							Route:       []PublicKey{{0xAA}, {0xBB}},
							DestPayment: Uint128{Lo: 20},
							LeftFees:    Uint128{Lo: 0},
						},
					},
					{
						Kind: McOpCancel,
						Cancel: &McCancel{
							RequestID: someRequestID(),
						},
					},
				},
			},
		},
		CurrenciesDiff: []CurrencyDiff{
			{Currency: "SND", Add: true},
		},
		RelaysDiff: []RelayAddress{
			{RelayPublicKey: PublicKey{0xCC}, Address: "relay.example:443", Generation: 3},
		},
		InfoHash:         Hash256{0x42},
		MoveTokenCounter: 7,
		NewToken:         Signature{0x02},
	}

	var buf bytes.Buffer
	if _, err := WriteMessage(&buf, mt); err != nil {
		t.Fatalf("unable to write message: %v", err)
	}

	decoded, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("unable to read message: %v", err)
	}

	mt2, ok := decoded.(*MoveToken)
	if !ok {
		t.Fatalf("expected *MoveToken, got %T", decoded)
	}
	if !reflect.DeepEqual(mt, mt2) {
		t.Fatalf("round trip mismatch:\ngot:  %+v\nwant: %+v", mt2, mt)
	}
}

func TestMcResponseEncodeDecode(t *testing.T) {
	resp := &McResponse{
		RequestID:    someRequestID(),
		DestPayment:  Uint128{Lo: 10},
		LeftFees:     Uint128{Lo: 3},
		SrcPlainLock: Hash256{0x11},
		SerialNum:    Uint128{Lo: 99},
		InvoiceHash:  Hash256{0x22},
		Signature:    Signature{0x33},
	}

	var buf bytes.Buffer
	if err := resp.Encode(&buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	resp2 := &McResponse{}
	if err := resp2.Decode(&buf); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !reflect.DeepEqual(resp, resp2) {
		t.Fatalf("round trip mismatch: got %+v want %+v", resp2, resp)
	}
}

func TestUnknownMessageType(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff})
	if _, err := ReadMessage(&buf); err == nil {
		t.Fatalf("expected error reading unknown message type")
	}
}

func TestCurrencyTooLong(t *testing.T) {
	var buf bytes.Buffer
	long := Currency("this-currency-tag-is-too-long-to-fit")
	if err := writeCurrency(&buf, long); err == nil {
		t.Fatalf("expected error writing over-length currency tag")
	}
}
