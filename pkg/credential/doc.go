// Package credential handles user secrets on the client side.
//
// Transform converts a password into the representation sent to the backend:
// hex(SHA-256(password || ClientSalt)). It is deterministic and one-way; the
// backend still runs its own salted adaptive hash over whatever it receives.
// The transform only keeps the literal password out of request payloads and
// logs.
//
// CheckStrength applies the password policy used at registration and password
// change time, reporting every violated rule rather than the first one.
package credential
