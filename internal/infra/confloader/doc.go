// Package confloader loads console configuration with koanf.
//
// Sources, lowest to highest priority:
//
//  1. Defaults already present in the target struct
//  2. The YAML configuration file
//  3. HOSTDECK_* environment variables
//  4. Values set explicitly with LoadMap (command-line flags)
//
// Watcher reports writes to the configuration file so a long-running
// REPL can pick up changes without restarting.
package confloader
