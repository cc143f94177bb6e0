// Package connection is the console's session gateway to the backend.
//
//   - http.go: HTTPClient, the only HTTP entry point; credential
//     attachment, single-flight renewal and forced sign-out
//   - envelope.go: backend response envelope decoding
//   - authapi.go: typed endpoints (auth, profile, listings)
//   - manager.go: builds the gateway for the selected backend
package connection
