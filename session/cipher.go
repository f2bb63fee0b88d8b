package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/rand"
	"crypto/rc4"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher tags, matching protocol.Cipher* exactly (duplicated as untyped
// constants here to keep session free of a protocol import).
const (
	CipherNone             = 0
	CipherAES256GCM        = 1
	CipherChaCha20Poly1305 = 2
	CipherARIA256GCM       = 3
	CipherCamellia256CTR   = 4
	CipherSEEDCBC          = 5
	CipherCAST5CBC         = 6
	CipherIDEACBC          = 7
	Cipher3DESCBC          = 8
	CipherBlowfishCBC      = 9
	CipherRC4              = 10
	CipherDESCBC           = 11
	CipherPQCMarker        = 12
)

// MaskIV XORs the first 8 bytes of a 12-byte IV with the little-endian
// bytes of frameID. Calling it twice with the same frameID undoes the
// mask, so encrypt and decrypt share this helper.
func MaskIV(iv [12]byte, frameID int64) [12]byte {
	var mask [8]byte
	binary.LittleEndian.PutUint64(mask[:], uint64(frameID))
	out := iv
	for i := 0; i < 8; i++ {
		out[i] ^= mask[i]
	}
	return out
}

// SealResult is an encrypted chat payload ready to drop into a
// MessageHeader: algo tag, masked IV, auth tag (zero for non-AEAD
// ciphers), and ciphertext.
type SealResult struct {
	Algo       uint8
	IV         [12]byte
	Tag        [16]byte
	Ciphertext []byte
}

// Seal encrypts plaintext chat text under the session key using the
// cipher identified by algo, masking the IV with frameID before it goes
// on the wire.
func Seal(key [KeyLen]byte, algo uint8, frameID int64, plaintext []byte) (SealResult, error) {
	var iv [12]byte
	if _, err := io.ReadFull(rand.Reader, iv[:]); err != nil {
		return SealResult{}, fmt.Errorf("session: generate iv: %w", err)
	}

	var ct []byte
	var tag [16]byte
	var err error

	switch algo {
	case CipherNone:
		ct = append([]byte(nil), plaintext...)
	case CipherAES256GCM, CipherPQCMarker:
		ct, tag, err = sealAEAD(newAESGCM, key[:], iv[:], plaintext)
	case CipherChaCha20Poly1305:
		ct, tag, err = sealAEAD(newChaCha20Poly1305, key[:], iv[:], plaintext)
	case Cipher3DESCBC:
		ct, err = sealCBC3DES(key[:24], iv[:8], plaintext)
	case CipherBlowfishCBC:
		ct, err = sealCBCBlowfish(key[:], iv[:8], plaintext)
	case CipherCAST5CBC:
		ct, err = sealCBCCAST5(key[:16], iv[:8], plaintext)
	case CipherRC4:
		ct, err = streamRC4(key[:], plaintext)
	case CipherDESCBC:
		ct, err = sealCBCDES(key[:8], iv[:8], plaintext)
	case CipherARIA256GCM, CipherCamellia256CTR, CipherSEEDCBC, CipherIDEACBC:
		return SealResult{}, fmt.Errorf("session: cipher %d has no available implementation", algo)
	default:
		return SealResult{}, fmt.Errorf("session: unknown cipher %d", algo)
	}
	if err != nil {
		return SealResult{}, err
	}

	masked := MaskIV(iv, frameID)
	return SealResult{Algo: algo, IV: masked, Tag: tag, Ciphertext: ct}, nil
}

// Open decrypts a chat payload, reversing the frame-id IV mask first.
// A failure here is not fatal to the connection: decrypt failures are
// surfaced to the client as an opaque garbled-text indicator and the
// packet is still delivered, so callers should swallow the error and
// show a placeholder rather than closing the session.
func Open(key [KeyLen]byte, algo uint8, frameID int64, iv [12]byte, tag [16]byte, ciphertext []byte) ([]byte, error) {
	unmasked := MaskIV(iv, frameID)

	switch algo {
	case CipherNone:
		return append([]byte(nil), ciphertext...), nil
	case CipherAES256GCM, CipherPQCMarker:
		return openAEAD(newAESGCM, key[:], unmasked[:], ciphertext, tag)
	case CipherChaCha20Poly1305:
		return openAEAD(newChaCha20Poly1305, key[:], unmasked[:], ciphertext, tag)
	case Cipher3DESCBC:
		return openCBC3DES(key[:24], unmasked[:8], ciphertext)
	case CipherBlowfishCBC:
		return openCBCBlowfish(key[:], unmasked[:8], ciphertext)
	case CipherCAST5CBC:
		return openCBCCAST5(key[:16], unmasked[:8], ciphertext)
	case CipherRC4:
		return streamRC4(key[:], ciphertext)
	case CipherDESCBC:
		return openCBCDES(key[:8], unmasked[:8], ciphertext)
	case CipherARIA256GCM, CipherCamellia256CTR, CipherSEEDCBC, CipherIDEACBC:
		return nil, fmt.Errorf("session: cipher %d has no available implementation", algo)
	default:
		return nil, fmt.Errorf("session: unknown cipher %d", algo)
	}
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func newChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	return chacha20poly1305.New(key)
}

func sealAEAD(newAEAD func([]byte) (cipher.AEAD, error), key, nonce, plaintext []byte) ([]byte, [16]byte, error) {
	var tag [16]byte
	aead, err := newAEAD(key)
	if err != nil {
		return nil, tag, err
	}
	sealed := aead.Seal(nil, nonce[:aead.NonceSize()], plaintext, nil)
	ct := sealed[:len(sealed)-aead.Overhead()]
	copy(tag[:], sealed[len(sealed)-aead.Overhead():])
	return ct, tag, nil
}

func openAEAD(newAEAD func([]byte) (cipher.AEAD, error), key, nonce, ciphertext []byte, tag [16]byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	sealed := append(append([]byte(nil), ciphertext...), tag[:]...)
	return aead.Open(nil, nonce[:aead.NonceSize()], sealed, nil)
}

// pkcs7Pad/pkcs7Unpad implement the padding the block-cipher CBC modes
// below need; Go's stdlib has no padded-CBC helper.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	pad := make([]byte, padLen)
	for i := range pad {
		pad[i] = byte(padLen)
	}
	return append(data, pad...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("session: empty ciphertext")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, fmt.Errorf("session: invalid padding")
	}
	return data[:len(data)-padLen], nil
}

func sealCBCDES(key, iv8 []byte, plaintext []byte) ([]byte, error) {
	block, err := des.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cbcEncrypt(block, iv8, plaintext), nil
}

func openCBCDES(key, iv8 []byte, ciphertext []byte) ([]byte, error) {
	block, err := des.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cbcDecrypt(block, iv8, ciphertext)
}

func sealCBC3DES(key, iv8 []byte, plaintext []byte) ([]byte, error) {
	block, err := des.NewTripleDESCipher(key)
	if err != nil {
		return nil, err
	}
	return cbcEncrypt(block, iv8, plaintext), nil
}

func openCBC3DES(key, iv8 []byte, ciphertext []byte) ([]byte, error) {
	block, err := des.NewTripleDESCipher(key)
	if err != nil {
		return nil, err
	}
	return cbcDecrypt(block, iv8, ciphertext)
}

func sealCBCBlowfish(key, iv8 []byte, plaintext []byte) ([]byte, error) {
	block, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cbcEncrypt(block, iv8, plaintext), nil
}

func openCBCBlowfish(key, iv8 []byte, ciphertext []byte) ([]byte, error) {
	block, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cbcDecrypt(block, iv8, ciphertext)
}

func sealCBCCAST5(key, iv8 []byte, plaintext []byte) ([]byte, error) {
	block, err := cast5.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cbcEncrypt(block, iv8, plaintext), nil
}

func openCBCCAST5(key, iv8 []byte, ciphertext []byte) ([]byte, error) {
	block, err := cast5.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cbcDecrypt(block, iv8, ciphertext)
}

// cbcEncrypt pads to the block's size and encrypts with a fresh IV each
// call; iv8 is the first 8 bytes of the message's random IV, taken before
// the frame-id mask is applied, extended with zeros up to
// the cipher's block size (all block ciphers used here have block sizes
// <= 16, so this extension is safe and deterministic per call).
func cbcEncrypt(block cipher.Block, iv8 []byte, plaintext []byte) []byte {
	iv := make([]byte, block.BlockSize())
	copy(iv, iv8)
	padded := pkcs7Pad(plaintext, block.BlockSize())
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return ct
}

func cbcDecrypt(block cipher.Block, iv8 []byte, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("session: ciphertext not block-aligned")
	}
	iv := make([]byte, block.BlockSize())
	copy(iv, iv8)
	pt := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ciphertext)
	return pkcs7Unpad(pt)
}

func streamRC4(key, data []byte) ([]byte, error) {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out, nil
}
