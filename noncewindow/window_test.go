package noncewindow

import "testing"

// TestReplayRejectionMatchesWorkedExample reproduces the worked example:
// accept counters 1..=256, then offer 0 (rejected), offer 257
// (accepted), re-offer 257 (rejected).
func TestReplayRejectionMatchesWorkedExample(t *testing.T) {
	w := New(256)

	for c := uint64(1); c <= 256; c++ {
		if !w.Accept(c) {
			t.Fatalf("Accept(%d) = false, want true", c)
		}
	}

	if w.Accept(0) {
		t.Fatalf("Accept(0) = true, want false (outside trailing edge)")
	}
	if !w.Accept(257) {
		t.Fatalf("Accept(257) = false, want true")
	}
	if w.Accept(257) {
		t.Fatalf("re-Accept(257) = true, want false (replay)")
	}
}

func TestFirstCounterAlwaysAccepted(t *testing.T) {
	w := New(64)
	if !w.Accept(1000) {
		t.Fatalf("first Accept should always succeed")
	}
	if w.Accept(1000) {
		t.Fatalf("replay of the seed counter must be rejected")
	}
}

func TestOutOfOrderWithinWindowAccepted(t *testing.T) {
	w := New(64)
	w.Accept(10)
	if !w.Accept(8) {
		t.Fatalf("Accept(8) after 10 should succeed (within window, unseen)")
	}
	if w.Accept(8) {
		t.Fatalf("re-Accept(8) should be rejected as a replay")
	}
	if !w.Accept(9) {
		t.Fatalf("Accept(9) after 10 should succeed (within window, unseen)")
	}
}

func TestFarFutureCounterClearsWindow(t *testing.T) {
	w := New(64)
	w.Accept(1)
	w.Accept(2)

	if !w.Accept(1000) {
		t.Fatalf("a far-future counter should always be accepted")
	}
	// Counters from before the jump are now outside the trailing edge.
	if w.Accept(2) {
		t.Fatalf("Accept(2) after the window moved far forward should be rejected")
	}
}
