// Package session holds the authenticated session state of the console.
//
// A Store is the single owner of the current identity, credential pair,
// loading flag and last error. Mutations that change the identity or the
// credentials are written through a Persister before the mutator returns,
// so a later process rehydrates exactly what the previous one committed.
//
// The authenticated flag is only ever raised by CommitSession. Every other
// mutator can keep it or lower it.
package session
