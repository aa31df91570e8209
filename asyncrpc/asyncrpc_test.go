package asyncrpc

import (
	"context"
	"testing"
	"time"

	"github.com/creditmesh/corenet/ccrypto"
)

func TestDoRoundTripsThroughActor(t *testing.T) {
	type echoReq struct{ n int }
	ops := make(chan *Call[echoReq, int])
	go func() {
		call := <-ops
		call.Reply(call.Req.n * 2)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := Do[echoReq, int](ctx, ops, echoReq{n: 21})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestDoPropagatesActorError(t *testing.T) {
	type req struct{}
	wantErr := context.Canceled
	ops := make(chan *Call[req, int])
	go func() {
		call := <-ops
		call.ReplyErr(wantErr)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Do[req, int](ctx, ops, req{})
	if err != wantErr {
		t.Fatalf("got err %v, want %v", err, wantErr)
	}
}

func TestDoReturnsContextErrorWhenActorUnreachable(t *testing.T) {
	type req struct{}
	// No reader ever drains this channel, so the send can never proceed.
	ops := make(chan *Call[req, int])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Do[req, int](ctx, ops, req{})
	if err != context.DeadlineExceeded {
		t.Fatalf("got err %v, want DeadlineExceeded", err)
	}
}

func TestIdentityServiceSignsAndReportsPublicKey(t *testing.T) {
	priv, err := ccrypto.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	svc := NewIdentityService(priv)
	defer svc.Stop()

	if svc.PublicKey() != priv.PublicKey() {
		t.Fatalf("PublicKey mismatch")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	buf := []byte("sign me")
	sig, err := svc.Sign(ctx, buf)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !ccrypto.Verify(svc.PublicKey(), buf, sig) {
		t.Fatalf("signature does not verify")
	}
}

func TestIdentityServiceStopEndsActor(t *testing.T) {
	priv, err := ccrypto.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	svc := NewIdentityService(priv)
	svc.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := svc.Sign(ctx, []byte("x")); err != context.DeadlineExceeded {
		t.Fatalf("got err %v, want DeadlineExceeded after Stop", err)
	}
}

func TestTimerTickDeliversToAllSubscribers(t *testing.T) {
	timer := NewTimer(time.Hour)

	ch1, unsub1 := timer.Subscribe()
	defer unsub1()
	ch2, unsub2 := timer.Subscribe()
	defer unsub2()

	timer.Tick()

	select {
	case <-ch1:
	default:
		t.Fatalf("subscriber 1 did not receive tick")
	}
	select {
	case <-ch2:
	default:
		t.Fatalf("subscriber 2 did not receive tick")
	}
}

func TestTimerTickDropsForSlowSubscriber(t *testing.T) {
	timer := NewTimer(time.Hour)
	ch, unsub := timer.Subscribe()
	defer unsub()

	// Fill the buffered-1 channel, then confirm a second tick does not
	// block the broadcaster even though nothing has drained the first.
	timer.Tick()
	done := make(chan struct{})
	go func() {
		timer.Tick()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Tick blocked on a slow subscriber")
	}

	<-ch
}

func TestTimerUnsubscribeStopsDelivery(t *testing.T) {
	timer := NewTimer(time.Hour)
	ch, unsub := timer.Subscribe()
	unsub()

	timer.Tick()

	select {
	case <-ch:
		t.Fatalf("unsubscribed channel received a tick")
	default:
	}
}

func TestTimerStartAndStop(t *testing.T) {
	timer := NewTimer(5 * time.Millisecond)
	ch, unsub := timer.Subscribe()
	defer unsub()

	timer.Start()
	defer timer.Stop()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("timer never ticked after Start")
	}
}

func TestTimerStopWithoutStartReturnsImmediately(t *testing.T) {
	timer := NewTimer(time.Hour)
	done := make(chan struct{})
	go func() {
		timer.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop on a never-started Timer blocked")
	}
}
