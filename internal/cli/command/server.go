package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/cli/connection"
)

// ServerCommand returns the server subcommand group.
func ServerCommand() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"servers"},
		Usage:   "Browse managed servers",
		Before:  requireAccess(routeServers),
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List servers",
				Flags:   listFlags(),
				Action:  serverList,
			},
		},
	}
}

// UserCommand returns the user subcommand group. Administrators only.
func UserCommand() *cli.Command {
	return &cli.Command{
		Name:    "user",
		Aliases: []string{"users"},
		Usage:   "Browse accounts (admin)",
		Before:  requireAccess(routeUsers),
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List accounts",
				Flags:   listFlags(),
				Action:  userList,
			},
		},
	}
}

func listFlags() []cli.Flag {
	return append(formatFlags(),
		&cli.IntFlag{
			Name:  "page",
			Value: 1,
			Usage: "Page number",
		},
		&cli.IntFlag{
			Name:  "limit",
			Value: 20,
			Usage: "Page size",
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"q"},
			Usage:   "Filter by name",
		},
	)
}

func listOptions(c *cli.Context) connection.ListOptions {
	return connection.ListOptions{
		Page:   c.Int("page"),
		Limit:  c.Int("limit"),
		Search: c.String("search"),
	}
}

func serverList(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}
	api, err := rt.API()
	if err != nil {
		return err
	}

	page, err := api.ListServers(c.Context, listOptions(c))
	if err != nil {
		return rt.failure(err)
	}

	if !isTable(c, rt) {
		return render(c, rt, page)
	}
	if len(page.Servers) == 0 {
		fmt.Fprintln(rt.Out, "No servers found")
		return nil
	}
	if err := render(c, rt, page.Servers); err != nil {
		return err
	}
	printFooter(rt, page.Pagination, len(page.Servers))
	return nil
}

func userList(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}
	api, err := rt.API()
	if err != nil {
		return err
	}

	page, err := api.ListUsers(c.Context, listOptions(c))
	if err != nil {
		return rt.failure(err)
	}

	if !isTable(c, rt) {
		return render(c, rt, page)
	}
	if len(page.Users) == 0 {
		fmt.Fprintln(rt.Out, "No users found")
		return nil
	}
	if err := render(c, rt, page.Users); err != nil {
		return err
	}
	printFooter(rt, page.Pagination, len(page.Users))
	return nil
}

func printFooter(rt *Runtime, p connection.Pagination, shown int) {
	pages := int64(1)
	if p.Limit > 0 {
		pages = (p.Total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	if pages < 1 {
		pages = 1
	}
	fmt.Fprintf(rt.Out, "\nShowing %d of %d (page %d/%d)\n", shown, p.Total, p.Page, pages)
}
