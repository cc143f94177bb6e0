// Package storage provides the local key-value storage used by hostdeck-cli.
//
// The CLI persists a single session record between invocations. The
// KVEngine interface hides the backing engine:
//
//   - BadgerEngine: on-disk storage (dgraph-io/badger) under the state dir
//   - memory.Engine: process-local map, used by tests and --ephemeral runs
//
// Values are opaque bytes; encryption happens in the caller.
package storage
