package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group. None of its
// subcommands open the session.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Flags:  formatFlags(),
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:      "set",
				Usage:     "Change a key in the config file",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
			{
				Name:   "keys",
				Usage:  "List settable keys",
				Action: configKeys,
			},
		},
	}
}

// configFile is the --config path, else the file the running shell
// loaded, else the default.
func configFile(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	if rt := runtimeFrom(c); rt != nil {
		return rt.ConfigPath
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	cfg, err := config.Load(configFile(c), flagOverrides(c))
	if err != nil {
		return err
	}
	if lookupString(c, "output") == "" {
		// Nested settings default to YAML.
		return renderAs(c, "yaml", cfg)
	}
	return render(c, nil, cfg)
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, configFile(c))
	return nil
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: %s config set KEY VALUE", c.App.Name)
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	path := configFile(c)
	if _, err := config.Set(path, key, value); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Set %s in %s\n", key, path)
	return nil
}

func configKeys(c *cli.Context) error {
	for _, k := range config.Keys {
		fmt.Fprintln(c.App.Writer, k)
	}
	return nil
}
