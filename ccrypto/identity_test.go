package ccrypto

import "testing"

// TestSignVerify exercises Testable Property 4: a signature produced by
// sign(Ed25519, sk, buf) verifies under pk and no other public key.
func TestSignVerify(t *testing.T) {
	alice, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("unable to generate identity: %v", err)
	}
	bob, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("unable to generate identity: %v", err)
	}

	buf := []byte("some canonical buffer")
	sig := alice.Sign(buf)

	if !Verify(alice.PublicKey(), buf, sig) {
		t.Fatalf("signature failed to verify under its own key")
	}
	if Verify(bob.PublicKey(), buf, sig) {
		t.Fatalf("signature verified under an unrelated public key")
	}

	tampered := append([]byte(nil), buf...)
	tampered[0] ^= 0xff
	if Verify(alice.PublicKey(), tampered, sig) {
		t.Fatalf("signature verified over tampered buffer")
	}
}

func TestIdentityFromSeedRoundTrip(t *testing.T) {
	alice, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("unable to generate identity: %v", err)
	}

	rebuilt, err := IdentityFromSeed(alice.Seed())
	if err != nil {
		t.Fatalf("unable to rebuild identity: %v", err)
	}

	if rebuilt.PublicKey() != alice.PublicKey() {
		t.Fatalf("rebuilt identity has a different public key")
	}
}

func TestDeriveChannelKeyAgreement(t *testing.T) {
	aPriv, err := GenerateDHPrivate()
	if err != nil {
		t.Fatalf("unable to generate dh key: %v", err)
	}
	bPriv, err := GenerateDHPrivate()
	if err != nil {
		t.Fatalf("unable to generate dh key: %v", err)
	}

	aPub, err := aPriv.Public()
	if err != nil {
		t.Fatalf("unable to derive public: %v", err)
	}
	bPub, err := bPriv.Public()
	if err != nil {
		t.Fatalf("unable to derive public: %v", err)
	}

	aSecret, err := aPriv.SharedSecret(bPub)
	if err != nil {
		t.Fatalf("unable to compute shared secret: %v", err)
	}
	bSecret, err := bPriv.SharedSecret(aPub)
	if err != nil {
		t.Fatalf("unable to compute shared secret: %v", err)
	}
	if aSecret != bSecret {
		t.Fatalf("shared secrets disagree")
	}

	salt := []byte("tx-salt")
	aKey, err := DeriveChannelKey(aSecret, salt)
	if err != nil {
		t.Fatalf("unable to derive key: %v", err)
	}
	bKey, err := DeriveChannelKey(bSecret, salt)
	if err != nil {
		t.Fatalf("unable to derive key: %v", err)
	}
	if aKey != bKey {
		t.Fatalf("derived keys disagree")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := [KeySize]byte{}
	if _, err := RandomBytes(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	copy(key[:], mustRandom(t, KeySize))

	plaintext := []byte("pay the toll")
	ct, err := Seal(key, 7, plaintext, nil)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	pt, err := Open(key, 7, ct, nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(pt) != string(plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", pt, plaintext)
	}

	if _, err := Open(key, 8, ct, nil); err == nil {
		t.Fatalf("expected open with wrong counter to fail")
	}
}

func mustRandom(t *testing.T, n int) []byte {
	t.Helper()
	b, err := RandomBytes(n)
	if err != nil {
		t.Fatalf("unable to generate random bytes: %v", err)
	}
	return b
}
