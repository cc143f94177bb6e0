package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/cli/output"
	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/core/service"
	"github.com/yndnr/hostdeck-go/pkg/credential"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Sign in to the backend",
		Before: requireAccess(routeSignIn),
		Flags: append(formatFlags(),
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account name (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted when omitted)",
			},
		),
		Action: authLogin,
	}
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:   "register",
		Usage:  "Create an account and sign in",
		Before: requireAccess(routeRegister),
		Flags: append(formatFlags(),
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account name (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Email address (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted twice when omitted)",
			},
		),
		Action: authRegister,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and forget the local session",
		Action: authLogout,
	}
}

// PasswdCommand returns the passwd command.
func PasswdCommand() *cli.Command {
	return &cli.Command{
		Name:   "passwd",
		Usage:  "Change the password of the signed-in account",
		Before: requireAccess(routeProfile),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "current",
				Usage: "Current password (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:  "new",
				Usage: "New password (prompted twice when omitted)",
			},
		},
		Action: authPasswd,
	}
}

func authLogin(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}

	p := rt.prompter()
	username, err := valueOrPrompt(c.String("username"), p.Line, "Username")
	if err != nil {
		return err
	}
	password, err := valueOrPrompt(c.String("password"), p.Secret, "Password")
	if err != nil {
		return err
	}

	spinner := output.NewSpinner(rt.Err, "Signing in...")
	spinner.Start()
	res := rt.Auth.SignIn(c.Context, username, password)
	spinner.Stop()

	if !res.Success {
		return errors.New(res.Error)
	}
	return signedIn(c, rt, res)
}

func authRegister(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}

	p := rt.prompter()
	username, err := valueOrPrompt(c.String("username"), p.Line, "Username")
	if err != nil {
		return err
	}
	email, err := valueOrPrompt(c.String("email"), p.Line, "Email")
	if err != nil {
		return err
	}
	password, err := valueOrPrompt(c.String("password"), p.NewSecret, "Password")
	if err != nil {
		return err
	}

	spinner := output.NewSpinner(rt.Err, "Creating account...")
	spinner.Start()
	res := rt.Auth.SignUp(c.Context, username, email, password)
	spinner.Stop()

	if !res.Success {
		return resultError(rt, res)
	}
	return signedIn(c, rt, res)
}

func authLogout(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}

	wasSignedIn := rt.Store.Snapshot().IsAuthenticated
	rt.Auth.SignOut(c.Context)

	if wasSignedIn {
		fmt.Fprintln(rt.Out, "Signed out")
	} else {
		fmt.Fprintln(rt.Out, "Not signed in")
	}
	return nil
}

func authPasswd(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}

	p := rt.prompter()
	current, err := valueOrPrompt(c.String("current"), p.Secret, "Current password")
	if err != nil {
		return err
	}
	next, err := valueOrPrompt(c.String("new"), p.NewSecret, "New password")
	if err != nil {
		return err
	}

	res := rt.Auth.ChangePassword(c.Context, current, next)
	if !res.Success {
		return resultError(rt, res)
	}
	fmt.Fprintln(rt.Out, "Password changed")
	return nil
}

// signedIn reports the new session.
func signedIn(c *cli.Context, rt *Runtime, res service.Result) error {
	if !isTable(c, rt) {
		return render(c, rt, res.Identity)
	}
	id := res.Identity
	if id == nil {
		fmt.Fprintln(rt.Out, "Signed in")
		return nil
	}
	fmt.Fprintf(rt.Out, "Signed in as %s (%s)\n", id.Username, id.Role)
	return nil
}

// resultError converts a failed facade result into the command error.
// Password policy failures print the full checklist first.
func resultError(rt *Runtime, res service.Result) error {
	if len(res.Violations) > 0 {
		printChecklist(rt.Err, res.Violations)
		return domain.ErrWeakSecret
	}
	return rt.failure(errors.New(res.Error))
}

// printChecklist marks every password rule as met or violated.
func printChecklist(w io.Writer, violations []credential.Rule) {
	failed := make(map[string]bool, len(violations))
	for _, v := range violations {
		failed[v.Code] = true
	}

	fmt.Fprintln(w, "Password requirements:")
	for _, rule := range credential.Rules {
		mark := "✓"
		if failed[rule.Code] {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, rule.Message)
	}
}
