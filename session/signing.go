package session

import "crypto/ed25519"

// GenerateSigningKey creates a fresh Ed25519 keypair for a client that
// wants to sign its chat text.
func GenerateSigningKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(nil)
}

// Sign produces a 64-byte signature over plaintext chat text.
func Sign(priv ed25519.PrivateKey, plaintext []byte) [64]byte {
	var sig [64]byte
	copy(sig[:], ed25519.Sign(priv, plaintext))
	return sig
}

// Verify checks a signature against plaintext chat text and a sender
// public key. Verification is optional at the receiver and its result
// is surfaced to the UI, so callers should treat a false return as
// informational, not a reason to drop the message.
func Verify(pub [32]byte, plaintext []byte, sig [64]byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub[:]), plaintext, sig[:])
}
