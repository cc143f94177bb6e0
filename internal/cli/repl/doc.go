// Package repl runs the interactive console: each line is split into
// arguments and handed to the same command tree used in one-shot mode.
package repl
