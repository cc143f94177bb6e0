// Package token provides hashing and random material helpers for credentials.
package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// FingerprintLength is the number of hex characters kept by Fingerprint.
const FingerprintLength = 12

// Hash computes the SHA-256 hash of a string.
//
// The returned hash is hex encoded.
func Hash(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

// Fingerprint returns a short identifier for a credential that is safe to log.
// An empty value yields an empty fingerprint.
func Fingerprint(value string) string {
	if value == "" {
		return ""
	}
	return Hash(value)[:FingerprintLength]
}

// Equal compares two credentials in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
