package session

import (
	"bytes"
	"testing"
)

func TestMaskIVIsAnInvolution(t *testing.T) {
	var iv [12]byte
	for i := range iv {
		iv[i] = byte(i + 1)
	}
	frame := int64(0x0102030405060708)

	masked := MaskIV(iv, frame)
	if masked == iv {
		t.Fatal("mask did not change the IV")
	}
	// Only the first 8 bytes are masked.
	if masked[8] != iv[8] || masked[11] != iv[11] {
		t.Error("mask touched bytes past the frame-id window")
	}
	if MaskIV(masked, frame) != iv {
		t.Error("double mask did not restore the IV")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := [KeyLen]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
		17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32}
	plaintext := []byte("red alert, all hands to battle stations")
	frame := int64(9001)

	algos := []struct {
		name string
		algo uint8
		aead bool
	}{
		{"none", CipherNone, false},
		{"aes-256-gcm", CipherAES256GCM, true},
		{"chacha20-poly1305", CipherChaCha20Poly1305, true},
		{"3des-cbc", Cipher3DESCBC, false},
		{"blowfish-cbc", CipherBlowfishCBC, false},
		{"cast5-cbc", CipherCAST5CBC, false},
		{"rc4", CipherRC4, false},
		{"des-cbc", CipherDESCBC, false},
		{"pqc-marker", CipherPQCMarker, true},
	}
	for _, tt := range algos {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Seal(key, tt.algo, frame, plaintext)
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			if tt.aead && sealed.Tag == ([16]byte{}) {
				t.Error("AEAD cipher produced a zero auth tag")
			}
			if !tt.aead && sealed.Tag != ([16]byte{}) {
				t.Error("non-AEAD cipher produced a nonzero auth tag")
			}

			got, err := Open(key, tt.algo, frame, sealed.IV, sealed.Tag, sealed.Ciphertext)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("round trip = %q, want %q", got, plaintext)
			}
		})
	}
}

func TestOpenRejectsTamperedAEAD(t *testing.T) {
	key := randomKey(t)
	sealed, err := Seal(key, CipherAES256GCM, 7, []byte("engage"))
	if err != nil {
		t.Fatal(err)
	}
	sealed.Tag[0] ^= 0x01
	if _, err := Open(key, CipherAES256GCM, 7, sealed.IV, sealed.Tag, sealed.Ciphertext); err == nil {
		t.Error("tampered tag accepted")
	}
}

func TestOpenWrongFrameFailsAEAD(t *testing.T) {
	key := randomKey(t)
	sealed, err := Seal(key, CipherChaCha20Poly1305, 7, []byte("engage"))
	if err != nil {
		t.Fatal(err)
	}
	// The IV mask depends on the frame id; the wrong frame unmasks to a
	// different nonce and the tag check fails.
	if _, err := Open(key, CipherChaCha20Poly1305, 8, sealed.IV, sealed.Tag, sealed.Ciphertext); err == nil {
		t.Error("wrong-frame decrypt succeeded")
	}
}

func TestUnimplementedCiphersRefuse(t *testing.T) {
	key := randomKey(t)
	for _, algo := range []uint8{CipherARIA256GCM, CipherCamellia256CTR, CipherSEEDCBC, CipherIDEACBC} {
		if _, err := Seal(key, algo, 1, []byte("x")); err == nil {
			t.Errorf("cipher %d sealed despite having no implementation", algo)
		}
	}
}

func TestSignVerify(t *testing.T) {
	pub, priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatal(err)
	}
	plaintext := []byte("it's a fake")
	sig := Sign(priv, plaintext)

	var pub32 [32]byte
	copy(pub32[:], pub)
	if !Verify(pub32, plaintext, sig) {
		t.Error("valid signature rejected")
	}

	tampered := append([]byte(nil), plaintext...)
	tampered[0] ^= 0x01
	if Verify(pub32, tampered, sig) {
		t.Error("signature verified over tampered plaintext")
	}

	otherPub, _, err := GenerateSigningKey()
	if err != nil {
		t.Fatal(err)
	}
	copy(pub32[:], otherPub)
	if Verify(pub32, plaintext, sig) {
		t.Error("signature verified under the wrong public key")
	}
}
