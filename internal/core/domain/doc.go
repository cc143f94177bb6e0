// Package domain defines the core domain models for hostdeck.
//
// Domain models are plain value objects without IO dependencies.
// This package contains:
//
//   - Identity: the authenticated principal and its role
//   - CredentialPair: access and renewal credentials issued by the backend
//   - Errors: domain error codes shared by the client layers
package domain
