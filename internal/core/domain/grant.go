package domain

// SessionGrant is what the backend returns for a successful sign-in or
// sign-up.
type SessionGrant struct {
	Identity    *Identity
	Credentials CredentialPair
}
