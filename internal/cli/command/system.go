package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Client diagnostics",
		Subcommands: []*cli.Command{
			{
				Name:  "metrics",
				Usage: "Show client metrics collected in this process",
				Flags: append(formatFlags(),
					&cli.StringFlag{
						Name:  "prefix",
						Value: "hostdeck_",
						Usage: "Only show metrics with this name prefix",
					},
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Include runtime and storage metrics",
					},
				),
				Action: systemMetrics,
			},
			{
				Name:   "version",
				Usage:  "Show build information",
				Flags:  formatFlags(),
				Action: systemVersion,
			},
		},
	}
}

func systemMetrics(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}

	prefix := c.String("prefix")
	if c.Bool("all") {
		prefix = ""
	}
	samples, err := rt.Metrics.Snapshot(prefix)
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	if len(samples) == 0 && isTable(c, rt) {
		fmt.Fprintln(rt.Out, "No metrics recorded")
		return nil
	}
	return render(c, rt, samples)
}

func systemVersion(c *cli.Context) error {
	return render(c, runtimeFrom(c), buildinfo.Get())
}
