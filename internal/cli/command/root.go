package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/cli/output"
	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/infra/buildinfo"
	"github.com/yndnr/hostdeck-go/internal/infra/shutdown"
)

// Exit codes returned by Main.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitSignedOut = 3
	ExitForbidden = 4
	ExitNetwork   = 5
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     buildinfo.ProductName,
		Usage:    "Sign in to a hostdeck backend and work with its servers",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Commands: Commands(),
		Metadata: map[string]any{},
		Action:   defaultAction,
		// Errors are reported by Main.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// Commands returns the top-level commands.
func Commands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		RegisterCommand(),
		LogoutCommand(),
		WhoamiCommand(),
		PasswdCommand(),
		ProfileCommand(),
		ServerCommand(),
		UserCommand(),
		SystemCommand(),
		ConfigCommand(),
		ShellCommand(),
	}
}

// globalFlags returns the global CLI flags. Environment variables are
// read by the config loader, not by the flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.hostdeck/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Backend base URL (e.g., https://deck.example.com)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "state-dir",
			Usage: "Directory holding the persisted session",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout (e.g., 10s)",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM bundle trusted in addition to the system roots",
		},
	}
}

// defaultAction opens the shell on a terminal and prints help otherwise.
func defaultAction(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	if f, ok := c.App.Reader.(*os.File); ok && output.IsTerminal(f) {
		return runShell(c)
	}
	return cli.ShowAppHelp(c)
}

// ensureRuntime returns the process runtime, building it on first use.
func ensureRuntime(c *cli.Context) (*Runtime, error) {
	if rt := runtimeFrom(c); rt != nil {
		return rt, nil
	}
	rt, err := newRuntime(c)
	if err != nil {
		return nil, err
	}
	c.App.Metadata[metaRuntime] = rt
	return rt, nil
}

// Execute runs app with args and releases the runtime afterwards.
func Execute(ctx context.Context, app *cli.App, args []string) error {
	err := app.RunContext(ctx, args)
	if h, ok := app.Metadata[metaShutdown].(*shutdown.Handler); ok {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Main runs the CLI with os-level wiring and returns the exit code.
func Main(args []string) int {
	app := App()
	h := shutdown.NewHandler(shutdown.DefaultTimeout)
	app.Metadata[metaShutdown] = h

	ctx, cancel := h.WithSignals(context.Background())
	defer cancel()

	if err := Execute(ctx, app, args); err != nil {
		if errors.Is(err, context.Canceled) {
			return ExitError
		}
		printError(os.Stderr, err)
		return exitCode(err)
	}
	return ExitOK
}

// exitCode maps an error onto the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrNotSignedIn), errors.Is(err, domain.ErrUnauthorized):
		return ExitSignedOut
	case errors.Is(err, domain.ErrAdminRequired):
		return ExitForbidden
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrTimeout):
		return ExitNetwork
	default:
		return ExitError
	}
}

// printError writes err to w.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// formatFlags are accepted by every command that renders data, so the
// format may follow the command name.
func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// lookupString returns the innermost non-empty value of a flag that may
// be given globally or on the command.
func lookupString(c *cli.Context, name string) string {
	for _, ctx := range c.Lineage() {
		if v := ctx.String(name); v != "" {
			return v
		}
	}
	return ""
}

func lookupBool(c *cli.Context, name string) bool {
	for _, ctx := range c.Lineage() {
		if ctx.Bool(name) {
			return true
		}
	}
	return false
}

// outputName is the requested format, falling back to the configured one.
func outputName(c *cli.Context, rt *Runtime) string {
	name := lookupString(c, "output")
	if name == "" && rt != nil {
		name = rt.Config.Output
	}
	return name
}

// render writes data in the selected output format.
func render(c *cli.Context, rt *Runtime, data any) error {
	return renderAs(c, outputName(c, rt), data)
}

func renderAs(c *cli.Context, name string, data any) error {
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, lookupBool(c, "wide")).Format(c.App.Writer, data)
}

// isTable reports whether output goes to the table formatter, so
// human-only decorations may be printed.
func isTable(c *cli.Context, rt *Runtime) bool {
	f, err := output.ParseFormat(outputName(c, rt))
	return err == nil && f == output.FormatTable
}
