// Package adaptive provides authenticated encryption for local state.
package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// KeySize is the required key length for both algorithms.
const KeySize = 32

// Algorithm tags written ahead of sealed data.
const (
	tagAESGCM   byte = 0x01
	tagChaCha20 byte = 0x02
)

var (
	// ErrInvalidKey is returned for keys that are not KeySize bytes.
	ErrInvalidKey = errors.New("adaptive: key must be 32 bytes")

	// ErrMalformed is returned when sealed data is truncated or carries an unknown tag.
	ErrMalformed = errors.New("adaptive: malformed sealed data")
)

// Cipher provides authenticated encryption with one fixed algorithm.
type Cipher struct {
	typ  CipherType
	tag  byte
	aead cipher.AEAD
}

// New creates a cipher using the preferred algorithm for this host.
func New(key []byte) (*Cipher, error) {
	if hasAESNI() {
		return NewWithType(key, CipherAESGCM)
	}
	return NewWithType(key, CipherChaCha20)
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, cipherType CipherType) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	switch cipherType {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		return &Cipher{typ: cipherType, tag: tagAESGCM, aead: aead}, nil
	case CipherChaCha20:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, err
		}
		return &Cipher{typ: cipherType, tag: tagChaCha20, aead: aead}, nil
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher type %q", cipherType)
	}
}

// Type returns the cipher type.
func (c *Cipher) Type() CipherType {
	return c.typ
}

// Seal encrypts plaintext, binding additionalData, and prepends tag and nonce.
func (c *Cipher) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(nonce)+len(plaintext)+c.aead.Overhead())
	out = append(out, c.tag)
	out = append(out, nonce...)
	return c.aead.Seal(out, nonce, plaintext, additionalData), nil
}

// Open decrypts data produced by Seal with the same algorithm.
func (c *Cipher) Open(sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) < 1+c.aead.NonceSize() || sealed[0] != c.tag {
		return nil, ErrMalformed
	}

	nonce := sealed[1 : 1+c.aead.NonceSize()]
	return c.aead.Open(nil, nonce, sealed[1+c.aead.NonceSize():], additionalData)
}

// Open decrypts sealed data with whichever algorithm its tag names.
func Open(key, sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, ErrMalformed
	}

	var typ CipherType
	switch sealed[0] {
	case tagAESGCM:
		typ = CipherAESGCM
	case tagChaCha20:
		typ = CipherChaCha20
	default:
		return nil, ErrMalformed
	}

	c, err := NewWithType(key, typ)
	if err != nil {
		return nil, err
	}
	return c.Open(sealed, additionalData)
}

// hasAESNI reports whether Go uses hardware AES on this architecture.
func hasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}
