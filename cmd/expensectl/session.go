package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"strings"

	"github.com/geocoder89/expensehub/internal/client"
	"github.com/google/subcommands"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email")
	f.StringVar(&c.password, "password", "", "password (prompted when omitted)")
}

func (c *credentials) resolve(a *app) error {
	if strings.TrimSpace(c.email) == "" {
		return fmt.Errorf("-email is required")
	}
	if c.password != "" {
		return nil
	}
	pw, err := a.readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	c.password = pw
	return nil
}

type registerCmd struct {
	*app
	creds credentials
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account and sign in" }
func (*registerCmd) Usage() string {
	return `expensectl register -email <email> [-password <password>]
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) { c.creds.setFlags(f) }

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.creds.resolve(c.app); err != nil {
		return c.usage("%v", err)
	}
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	auth, err := c.client.Register(ctx, c.creds.email, c.creds.password)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.stdout, "Registered and signed in as %s\n", auth.User.Email)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	*app
	creds credentials
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in with email and password" }
func (*loginCmd) Usage() string {
	return `expensectl login -email <email> [-password <password>]
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) { c.creds.setFlags(f) }

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.creds.resolve(c.app); err != nil {
		return c.usage("%v", err)
	}
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	auth, err := c.client.Login(ctx, c.creds.email, c.creds.password)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.stdout, "Signed in as %s\n", auth.User.Email)
	return subcommands.ExitSuccess
}

type googleLoginCmd struct {
	*app
	idToken string
}

func (*googleLoginCmd) Name() string     { return "google-login" }
func (*googleLoginCmd) Synopsis() string { return "sign in with a Google ID token" }
func (*googleLoginCmd) Usage() string {
	return `expensectl google-login -id-token <jwt>

  Exchanges a Google ID token, obtained from any Google sign-in flow for this
  app's client id, for an expensehub session.
`
}

func (c *googleLoginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.idToken, "id-token", "", "Google ID token")
}

func (c *googleLoginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.idToken == "" {
		return c.usage("-id-token is required")
	}
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	auth, err := c.client.GoogleSignIn(ctx, c.idToken)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.stdout, "Signed in as %s\n", auth.User.Email)
	return subcommands.ExitSuccess
}

type logoutCmd struct{ *app }

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "forget the stored session" }
func (*logoutCmd) Usage() string            { return "expensectl logout\n" }
func (*logoutCmd) SetFlags(_ *flag.FlagSet) {}

func (c *logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}
	if err := c.client.Logout(ctx); err != nil {
		return c.fail(err)
	}
	fmt.Fprintln(c.stdout, "Signed out")
	return subcommands.ExitSuccess
}

type whoamiCmd struct{ *app }

func (*whoamiCmd) Name() string             { return "whoami" }
func (*whoamiCmd) Synopsis() string         { return "show the signed-in user" }
func (*whoamiCmd) Usage() string            { return "expensectl whoami\n" }
func (*whoamiCmd) SetFlags(_ *flag.FlagSet) {}

func (c *whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	me, err := c.client.Me(ctx)
	if client.StatusOf(err) == http.StatusUnauthorized {
		// stale or revoked token
		_ = c.client.Logout(ctx)
		return c.fail(fmt.Errorf("session expired, sign in again"))
	}
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.stdout, "%s (%s)\n", me.Email, me.ID)
	return subcommands.ExitSuccess
}
