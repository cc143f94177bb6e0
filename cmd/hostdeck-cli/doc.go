// Package main provides the entry point for hostdeck-cli.
//
// hostdeck-cli signs in to a hostdeck backend and keeps the session on
// disk, so later invocations reuse it:
//
//	hostdeck-cli login -u alice
//	hostdeck-cli whoami
//	hostdeck-cli server list -o json
//	hostdeck-cli logout
//
// Run without arguments on a terminal to start the interactive shell.
package main
