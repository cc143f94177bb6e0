package repl

import (
	"sort"
	"strings"
)

// builtins are handled by the loop itself.
var builtins = []string{"exit", "quit", "history", "help"}

// Completer knows the command names available in the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for the given top-level commands.
func NewCompleter(commands []string) *Completer {
	seen := make(map[string]bool)
	var all []string
	for _, c := range append(append([]string{}, commands...), builtins...) {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		all = append(all, c)
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns the commands starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var out []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}

// Known reports whether name is a command.
func (c *Completer) Known(name string) bool {
	i := sort.SearchStrings(c.commands, name)
	return i < len(c.commands) && c.commands[i] == name
}

// Suggest returns commands close to a mistyped name: those sharing its
// first letter.
func (c *Completer) Suggest(name string) []string {
	if name == "" {
		return nil
	}
	if s := c.Complete(name); len(s) > 0 {
		return s
	}
	return c.Complete(name[:1])
}
