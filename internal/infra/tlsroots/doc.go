// Package tlsroots builds the trust roots the console uses to reach the
// backend: the system pool plus an optional private CA bundle.
package tlsroots
