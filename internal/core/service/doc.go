// Package service provides the session facade of the console.
//
// AuthService turns user intents (sign in, sign up, sign out, profile
// refresh, profile and password changes) into backend calls and session
// store mutations. Failures are returned as Result values carrying a
// user-facing message; the facade never returns an error for an
// expected failure.
//
// Services are stateless and thread-safe. The session store holds all
// state.
package service
