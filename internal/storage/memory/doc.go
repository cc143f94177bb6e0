// Package memory provides a process-local storage.KVEngine.
//
// Nothing survives the process; it backs tests and --ephemeral runs.
package memory
