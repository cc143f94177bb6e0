package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/core/session"
	"github.com/yndnr/hostdeck-go/pkg/token"
)

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:    "whoami",
		Aliases: []string{"status"},
		Usage:   "Show the signed-in account and session",
		Before:  requireAccess(routeHome),
		Flags: append(formatFlags(),
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "Re-fetch the profile from the backend first",
			},
		),
		Action: accountWhoami,
	}
}

// ProfileCommand returns the profile subcommand group.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "View or edit the account profile",
		Before: requireAccess(routeProfile),
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Fetch and show the profile",
				Flags:  formatFlags(),
				Action: profileShow,
			},
			{
				Name:  "update",
				Usage: "Change profile fields",
				Flags: append(formatFlags(),
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "New email address",
						Required: true,
					},
				),
				Action: profileUpdate,
			},
		},
	}
}

// sessionView is the whoami output.
type sessionView struct {
	Username   string      `json:"username" yaml:"username"`
	Email      string      `json:"email" yaml:"email"`
	Role       domain.Role `json:"role" yaml:"role"`
	ID         int64       `json:"id" yaml:"id" table:",wide"`
	Server     string      `json:"server" yaml:"server"`
	Credential string      `json:"credential" yaml:"credential" table:",wide"`
	ExpiresAt  *time.Time  `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Status     string      `json:"status" yaml:"status"`
	Renewable  bool        `json:"renewable" yaml:"renewable"`
}

// Credential status values shown by whoami.
const (
	statusActive  = "active"
	statusExpired = "expired"
	statusUnknown = "unknown"
)

func accountWhoami(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}

	if c.Bool("refresh") {
		if _, ok := rt.Auth.RefreshProfile(c.Context); !ok {
			return rt.failure(errors.New("could not refresh the profile"))
		}
	}

	return render(c, rt, newSessionView(rt.Store.Snapshot(), rt.Config.Server, time.Now()))
}

func newSessionView(st session.State, server string, now time.Time) sessionView {
	v := sessionView{Server: server, Status: statusUnknown}
	if id := st.Identity; id != nil {
		v.Username = id.Username
		v.Email = id.Email
		v.Role = id.Role
		v.ID = id.ID
	}
	if st.Credentials == nil {
		return v
	}

	v.Credential = token.Fingerprint(st.Credentials.Access)
	v.Renewable = st.Credentials.Renewal != ""
	exp, ok := accessExpiry(st.Credentials.Access)
	if !ok && !st.Credentials.ExpiresAt.IsZero() {
		exp, ok = st.Credentials.ExpiresAt, true
	}
	if ok {
		v.ExpiresAt = &exp
		v.Status = statusActive
		if !now.Before(exp) {
			v.Status = statusExpired
		}
	}
	return v
}

// accessExpiry reads the exp claim of a JWT access credential without
// verifying it. Opaque credentials report false.
func accessExpiry(access string) (time.Time, bool) {
	if strings.Count(access, ".") != 2 {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func profileShow(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}

	id, ok := rt.Auth.RefreshProfile(c.Context)
	if !ok {
		return rt.failure(errors.New("could not load the profile"))
	}
	return render(c, rt, id)
}

func profileUpdate(c *cli.Context) error {
	rt, err := ensureRuntime(c)
	if err != nil {
		return err
	}

	res := rt.Auth.UpdateProfile(c.Context, c.String("email"))
	if !res.Success {
		return resultError(rt, res)
	}
	if !isTable(c, rt) {
		return render(c, rt, res.Identity)
	}
	fmt.Fprintf(rt.Out, "Profile updated: %s\n", res.Identity.Email)
	return nil
}
