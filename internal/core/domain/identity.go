package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role is the authorization role of an identity.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated principal as returned by the backend.
type Identity struct {
	ID        int64     `json:"id" yaml:"id"`
	Username  string    `json:"username" yaml:"username"`
	Email     string    `json:"email" yaml:"email"`
	Role      Role      `json:"role" yaml:"role"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" table:",wide"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" table:",wide"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Clone returns a copy of the identity, or nil for a nil receiver.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// CredentialPair holds the access credential attached to every request and
// the renewal credential used only to mint a new access credential.
// Both are opaque to the client.
type CredentialPair struct {
	Access  string `json:"access"`
	Renewal string `json:"renewal"`
	// ExpiresAt is the access expiry reported by the backend, zero when
	// not reported.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// IsZero reports whether no access credential is present.
func (p *CredentialPair) IsZero() bool {
	return p == nil || p.Access == ""
}

// Clone returns a copy of the pair, or nil for a nil receiver.
func (p *CredentialPair) Clone() *CredentialPair {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// NewRequestID generates a request correlation ID.
//
// Format: req-{ulid_lowercase}.
func NewRequestID() string {
	return "req-" + strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String())
}
