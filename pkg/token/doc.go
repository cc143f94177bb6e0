// Package token provides hashing and random material helpers for credentials.
//
// Hashing:
//
//   - Hash: hex-encoded SHA-256 of a string
//   - Fingerprint: short, log-safe prefix of Hash for correlating credentials
//
// Random material:
//
//   - GenerateBytes: CSPRNG bytes, used for local key material
//
// Credentials themselves are opaque; this package never needs to parse them.
package token
