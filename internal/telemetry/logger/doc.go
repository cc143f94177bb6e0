// Package logger provides structured logging for hostdeck.
//
// It wraps log/slog behind a small Logger interface with one shared,
// reloadable level. Request IDs travel in the context so gateway logs
// and the X-Request-ID header agree.
//
// Session code logs credential fingerprints, never credentials. The
// redaction in redact.go is the backstop for anything that slips through.
package logger
