package command

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/cli/config"
	"github.com/yndnr/hostdeck-go/internal/cli/repl"
	"github.com/yndnr/hostdeck-go/internal/core/session"
	"github.com/yndnr/hostdeck-go/internal/infra/buildinfo"
	"github.com/yndnr/hostdeck-go/internal/infra/confloader"
	"github.com/yndnr/hostdeck-go/internal/telemetry/logger"
)

const metaInShell = "in-shell"

// sensitiveFlags are never written to the shell history.
var sensitiveFlags = []string{"--password", "-p", "--current", "--new"}

// ShellCommand returns the shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Start an interactive shell sharing one session",
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	if in, _ := c.App.Metadata[metaInShell].(bool); in {
		return errors.New("already in the shell")
	}
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}
	c.App.Metadata[metaInShell] = true
	defer delete(c.App.Metadata, metaInShell)

	history := repl.NewHistory(filepath.Join(rt.Config.State.Dir, "history"), repl.DefaultHistorySize, sensitiveFlags...)
	if err := history.Load(); err != nil {
		rt.Logger.Warn("failed to load shell history", "error", err)
	}
	rt.shutdown.OnClose("history", history.Save)

	var prompt atomic.Value
	prompt.Store(promptFor(rt.Store.Snapshot()))
	unsubscribe := rt.Store.Subscribe(func(st session.State) {
		prompt.Store(promptFor(st))
	})
	defer unsubscribe()

	rt.watchConfig()

	shell := repl.New(repl.Config{
		Input:  rt.lines,
		Output: rt.Out,
		Execute: func(ctx context.Context, args []string) error {
			// A sign-out forced by an earlier line is not this line's failure.
			rt.takeExpired()
			line := lineApp(c.App)
			return line.RunContext(ctx, append([]string{line.Name}, args...))
		},
		Prompt:   func() string { return prompt.Load().(string) },
		Commands: commandNames(c.App.Commands),
		History:  history,
	})

	fmt.Fprintf(rt.Out, "%s %s. Type 'help' for commands, 'exit' to leave.\n", buildinfo.ProductName, buildinfo.Version)
	return shell.Run(c.Context)
}

// lineApp builds the app that runs one shell line. It shares metadata
// with parent, so every line uses the same runtime.
func lineApp(parent *cli.App) *cli.App {
	app := App()
	app.Metadata = parent.Metadata
	app.Reader = parent.Reader
	app.Writer = parent.Writer
	app.ErrWriter = parent.ErrWriter
	app.HideVersion = true
	return app
}

// promptFor renders the shell prompt for st.
func promptFor(st session.State) string {
	if !st.IsAuthenticated || st.Identity == nil {
		return "hostdeck(signed out)> "
	}
	return fmt.Sprintf("hostdeck(%s@%s)> ", st.Identity.Username, st.Identity.Role)
}

func commandNames(cmds []*cli.Command) []string {
	var names []string
	for _, cmd := range cmds {
		names = append(names, cmd.Names()...)
	}
	return names
}

// watchConfig follows the config file while the shell runs and applies
// log level changes.
func (rt *Runtime) watchConfig() {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.Logger))
	if err != nil {
		rt.Logger.Warn("config watcher unavailable", "error", err)
		return
	}
	if err := w.Watch(rt.ConfigPath); err != nil {
		_ = w.Stop()
		return
	}
	w.OnChange(func(path string) {
		cfg, err := config.Load(path, nil)
		if err != nil {
			rt.Logger.Warn("ignoring invalid config change", "path", path, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		rt.Logger.Info("config reloaded", "path", path, "log_level", cfg.Log.Level)
	})
	w.StartAsync()
	rt.shutdown.OnClose("config-watcher", w.Stop)
}
