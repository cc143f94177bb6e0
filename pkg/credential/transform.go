package credential

import "github.com/yndnr/hostdeck-go/pkg/token"

// ClientSalt is the fixed client-side constant mixed into every secret.
// Changing it invalidates every stored backend hash.
const ClientSalt = "server-manager-2025-secure-salt"

// Transform returns the transport form of a secret.
func Transform(secret string) string {
	return token.Hash(secret + ClientSalt)
}
