package session

import (
	"time"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
)

// State is a point-in-time view of the session.
type State struct {
	Identity        *domain.Identity
	Credentials     *domain.CredentialPair
	IsAuthenticated bool
	Loading         bool
	LastError       string
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Identity = s.Identity.Clone()
	s.Credentials = s.Credentials.Clone()
	return s
}

// Role returns the role of the current identity, or "" when none is known.
func (s State) Role() domain.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// IsAdmin reports whether the session is authenticated as an admin.
func (s State) IsAdmin() bool {
	return s.IsAuthenticated && s.Identity.IsAdmin()
}

func (s State) record() Record {
	r := Record{
		Identity:        s.Identity.Clone(),
		IsAuthenticated: s.IsAuthenticated,
	}
	if s.Credentials != nil {
		r.Access = s.Credentials.Access
		r.Renewal = s.Credentials.Renewal
		r.ExpiresAt = s.Credentials.ExpiresAt
	}
	return r
}

// Record is the persisted projection of State.
// Loading and LastError are never persisted.
type Record struct {
	Identity        *domain.Identity `json:"identity"`
	Access          string           `json:"access"`
	Renewal         string           `json:"renewal"`
	ExpiresAt       time.Time        `json:"expiresAt,omitzero"`
	IsAuthenticated bool             `json:"isAuthenticated"`
}

func (r Record) state() State {
	s := State{
		Identity:        r.Identity.Clone(),
		IsAuthenticated: r.IsAuthenticated && r.Access != "",
	}
	if r.Access != "" || r.Renewal != "" {
		s.Credentials = &domain.CredentialPair{Access: r.Access, Renewal: r.Renewal, ExpiresAt: r.ExpiresAt}
	}
	return s
}
