package channelpool

import "testing"

func TestInstallThenLookupAndSend(t *testing.T) {
	pool := New(3, 10)
	peerPK := [32]byte{0x01}
	txID, txKey := [16]byte{0xA1}, [32]byte{0xB1}
	rxID, rxKey := [16]byte{0xA2}, [32]byte{0xB2}

	pool.Install(peerPK, txID, txKey, rxID, rxKey)

	gotID, gotKey, err := pool.SendingKey(peerPK)
	if err != nil || gotID != txID || gotKey != txKey {
		t.Fatalf("SendingKey = (%v, %v, %v), want (%v, %v, nil)", gotID, gotKey, err, txID, txKey)
	}

	gotPeer, gotOpenKey, err := pool.Lookup(rxID)
	if err != nil || gotPeer != peerPK || gotOpenKey != rxKey {
		t.Fatalf("Lookup = (%v, %v, %v), want (%v, %v, nil)", gotPeer, gotOpenKey, err, peerPK, rxKey)
	}
}

func TestCarouselEvictsOldestPastLength(t *testing.T) {
	pool := New(2, 100)
	peerPK := [32]byte{0x02}

	rx1 := [16]byte{0x01}
	rx2 := [16]byte{0x02}
	rx3 := [16]byte{0x03}

	pool.Install(peerPK, [16]byte{0xF0}, [32]byte{}, rx1, [32]byte{0x01})
	pool.Install(peerPK, [16]byte{0xF1}, [32]byte{}, rx2, [32]byte{0x02})
	pool.Install(peerPK, [16]byte{0xF2}, [32]byte{}, rx3, [32]byte{0x03})

	if _, _, err := pool.Lookup(rx1); err != ErrUnknownChannelID {
		t.Fatalf("oldest receiving entry should have been evicted, err = %v", err)
	}
	if _, _, err := pool.Lookup(rx2); err != nil {
		t.Fatalf("rx2 should still be live: %v", err)
	}
	if _, _, err := pool.Lookup(rx3); err != nil {
		t.Fatalf("rx3 should still be live: %v", err)
	}
}

func TestTickEvictsExpiredReceivingEntry(t *testing.T) {
	pool := New(3, 2)
	peerPK := [32]byte{0x03}
	rxID := [16]byte{0x10}

	pool.Install(peerPK, [16]byte{0xF0}, [32]byte{}, rxID, [32]byte{0x09})

	pool.Tick()
	if _, _, err := pool.Lookup(rxID); err != nil {
		t.Fatalf("entry evicted too early: %v", err)
	}
	pool.Tick()
	if _, _, err := pool.Lookup(rxID); err != ErrUnknownChannelID {
		t.Fatalf("entry should be expired, err = %v", err)
	}
}

func TestNewestReceivingExpiryDropsSending(t *testing.T) {
	pool := New(3, 1)
	peerPK := [32]byte{0x04}
	txID := [16]byte{0xAA}
	rxID := [16]byte{0xBB}

	pool.Install(peerPK, txID, [32]byte{0x01}, rxID, [32]byte{0x02})

	pool.Tick() // single receiving entry is also the newest -> expires, drags sending with it

	if _, _, err := pool.SendingKey(peerPK); err != ErrUnknownPeer {
		t.Fatalf("sending key should have been dropped alongside the newest receiving entry, err = %v", err)
	}
}

func TestRemovePeerClearsAllIndices(t *testing.T) {
	pool := New(3, 100)
	peerPK := [32]byte{0x05}
	txID := [16]byte{0xCC}
	rxID := [16]byte{0xDD}

	pool.Install(peerPK, txID, [32]byte{0x01}, rxID, [32]byte{0x02})
	pool.RemovePeer(peerPK)

	if _, _, err := pool.SendingKey(peerPK); err != ErrUnknownPeer {
		t.Fatalf("SendingKey after RemovePeer = %v, want ErrUnknownPeer", err)
	}
	if _, _, err := pool.Lookup(rxID); err != ErrUnknownChannelID {
		t.Fatalf("Lookup after RemovePeer = %v, want ErrUnknownChannelID", err)
	}
}
