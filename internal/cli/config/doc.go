// Package config holds the console's local settings (~/.hostdeck/cli.yaml).
//
// Values are layered by confloader: built-in defaults, the YAML file,
// HOSTDECK_* environment variables, then command-line flags.
package config
