package session

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"testing"
)

func randomKey(t *testing.T) [KeyLen]byte {
	t.Helper()
	var k [KeyLen]byte
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		t.Fatal(err)
	}
	return k
}

// TestHandshakeRoundTrip: for any session key and master key, the
// server recovers exactly the session key the client generated.
func TestHandshakeRoundTrip(t *testing.T) {
	for i := 0; i < 20; i++ {
		master := randomKey(t)
		body, sessionKey, err := BuildClientHandshakeBody(master)
		if err != nil {
			t.Fatal(err)
		}
		sess, err := ServerHandshake(body, master)
		if err != nil {
			t.Fatalf("handshake rejected: %v", err)
		}
		if !bytes.Equal(sess.Key[:], sessionKey[:]) {
			t.Fatal("recovered session key differs from the client's")
		}
	}
}

// TestHandshakeTamper flips one byte of the magic half and expects a
// rejection: a tamper changes at least one bit of the decoded signature.
func TestHandshakeTamper(t *testing.T) {
	master := randomKey(t)
	body, _, err := BuildClientHandshakeBody(master)
	if err != nil {
		t.Fatal(err)
	}
	body[32+10] ^= 0x01

	if _, err := ServerHandshake(body, master); !errors.Is(err, ErrMagicMismatch) {
		t.Errorf("tampered handshake: err = %v, want ErrMagicMismatch", err)
	}
}

// TestHandshakeWrongMaster: a client keyed with a different master
// secret must be rejected.
func TestHandshakeWrongMaster(t *testing.T) {
	body, _, err := BuildClientHandshakeBody(randomKey(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ServerHandshake(body, randomKey(t)); !errors.Is(err, ErrMagicMismatch) {
		t.Errorf("wrong-master handshake: err = %v, want ErrMagicMismatch", err)
	}
}

func TestLoadMasterKey(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
		check   func([KeyLen]byte) bool
	}{
		{"missing refuses to start", "", true, nil},
		{"short value zero-padded", "abc", false, func(k [KeyLen]byte) bool {
			return k[0] == 'a' && k[2] == 'c' && k[3] == 0 && k[KeyLen-1] == 0
		}},
		{"long value truncated", "0123456789012345678901234567890123456789", false, func(k [KeyLen]byte) bool {
			return k[KeyLen-1] == '1'
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(MasterKeyEnvVar, tt.value)
			key, err := LoadMasterKey()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(key) {
				t.Errorf("key = %v fails shape check", key)
			}
		})
	}
}
