// Package token provides hashing and random material helpers for credentials.
package token

import (
	"crypto/rand"
	"encoding/hex"
)

// KeyLength is the default key length in bytes.
const KeyLength = 32

// GenerateBytes generates random bytes.
func GenerateBytes(length int) ([]byte, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	return bytes, nil
}

// GenerateKey generates KeyLength random bytes, hex encoded for storage.
func GenerateKey() (string, error) {
	b, err := GenerateBytes(KeyLength)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
