// Package session implements the per-connection key handshake, the
// chat cipher registry, and Ed25519 message signing.
package session

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

const (
	KeyLen = 32

	// MasterKeyEnvVar is the environment variable holding the shared
	// secret both ends of the handshake XOR against.
	MasterKeyEnvVar = "TREK_SUB_KEY"
)

// magicSignature is the fixed 32-byte constant both sides know; a
// handshake whose de-XORed second half doesn't match it is rejected.
var magicSignature = [KeyLen]byte{
	0x54, 0x52, 0x45, 0x4b, 0x2d, 0x53, 0x55, 0x42,
	0x2d, 0x4b, 0x45, 0x59, 0x2d, 0x4d, 0x41, 0x47,
	0x49, 0x43, 0x2d, 0x76, 0x31, 0x2e, 0x30, 0x2d,
	0x61, 0x72, 0x63, 0x74, 0x75, 0x72, 0x75, 0x73,
}

// ErrMagicMismatch is returned by ServerHandshake when the client's
// magic half doesn't de-XOR to magicSignature.
var ErrMagicMismatch = errors.New("session: handshake magic mismatch")

// LoadMasterKey reads TREK_SUB_KEY, zero-padding a short value and
// truncating a long one to KeyLen bytes. A missing value refuses
// startup.
func LoadMasterKey() ([KeyLen]byte, error) {
	var key [KeyLen]byte
	raw := os.Getenv(MasterKeyEnvVar)
	if raw == "" {
		return key, fmt.Errorf("session: %s not set, refusing to start", MasterKeyEnvVar)
	}
	copy(key[:], raw)
	return key, nil
}

// Session holds the per-connection symmetric key negotiated during the
// handshake, plus the chosen chat cipher (selected later via `enc`).
type Session struct {
	Key    [KeyLen]byte
	Cipher uint8
}

func xorBlock(dst, src []byte, key [KeyLen]byte) {
	for i := range dst {
		dst[i] = src[i] ^ key[i%KeyLen]
	}
}

// BuildClientHandshakeBody produces the 64-byte XORed body a client
// sends as the first packet on a new connection.
func BuildClientHandshakeBody(masterKey [KeyLen]byte) (body [64]byte, sessionKey [KeyLen]byte, err error) {
	if _, err = io.ReadFull(rand.Reader, sessionKey[:]); err != nil {
		return body, sessionKey, fmt.Errorf("session: generate session key: %w", err)
	}
	xorBlock(body[0:32], sessionKey[:], masterKey)
	xorBlock(body[32:64], magicSignature[:], masterKey)
	return body, sessionKey, nil
}

// ServerHandshake de-XORs an inbound 64-byte handshake body against the
// server's master key and validates the magic half, returning the
// session key on success.
func ServerHandshake(body [64]byte, masterKey [KeyLen]byte) (*Session, error) {
	var sessionKey [KeyLen]byte
	var magic [KeyLen]byte
	xorBlock(sessionKey[:], body[0:32], masterKey)
	xorBlock(magic[:], body[32:64], masterKey)

	if !bytes.Equal(magic[:], magicSignature[:]) {
		log.Info().Msg("session: handshake magic mismatch, closing connection")
		return nil, ErrMagicMismatch
	}
	return &Session{Key: sessionKey}, nil
}
