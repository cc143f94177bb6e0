// Package adaptive provides authenticated encryption for local state.
//
// The cipher is chosen from the host architecture:
//
//   - AES-256-GCM on amd64/arm64, where Go uses hardware AES
//   - ChaCha20-Poly1305 elsewhere
//
// Sealed output carries a one-byte algorithm tag ahead of the nonce, so data
// sealed on one host can be opened on another regardless of which algorithm
// that host would pick:
//
//	[tag:1][nonce][ciphertext+tag]
//
// Usage:
//
//	c, err := adaptive.New(key)
//	sealed, err := c.Seal(plaintext, aad)
//	plaintext, err := adaptive.Open(key, sealed, aad)
package adaptive
