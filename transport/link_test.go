package transport

import (
	"testing"
	"time"

	"github.com/creditmesh/corenet/mcwire"
)

func TestPipeRoundTrip(t *testing.T) {
	a, b := Pipe()

	received := make(chan mcwire.Message, 1)
	linkB := NewLink(b, func(msg mcwire.Message) {
		received <- msg
	})
	linkB.Start()
	defer linkB.Stop()

	linkA := NewLink(a, func(mcwire.Message) {})
	linkA.Start()
	defer linkA.Stop()

	msg := &mcwire.RequestNonce{RandNonceI: [16]byte{0x01, 0x02}}
	if err := linkA.SendMessage(msg); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	select {
	case got := <-received:
		rn, ok := got.(*mcwire.RequestNonce)
		if !ok {
			t.Fatalf("got %T, want *mcwire.RequestNonce", got)
		}
		if rn.RandNonceI != msg.RandNonceI {
			t.Fatalf("RandNonceI mismatch: got %x want %x", rn.RandNonceI, msg.RandNonceI)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message delivery")
	}
}

func TestLinkStopIsIdempotent(t *testing.T) {
	a, b := Pipe()
	defer b.Close()

	link := NewLink(a, func(mcwire.Message) {})
	link.Start()

	if err := link.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := link.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestQueueMessageAfterStopDoesNotBlock(t *testing.T) {
	a, b := Pipe()
	defer b.Close()

	link := NewLink(a, func(mcwire.Message) {})
	link.Start()
	link.Stop()

	done := make(chan struct{})
	go func() {
		sent := make(chan struct{})
		link.QueueMessage(&mcwire.RequestNonce{}, sent)
		<-sent
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("QueueMessage after Stop blocked instead of closing sentChan")
	}
}
