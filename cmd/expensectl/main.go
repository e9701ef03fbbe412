// Command expensectl is a terminal client for the expensehub API.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/geocoder89/expensehub/internal/config"
	"github.com/google/subcommands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.LoadClient()

	fs := flag.NewFlagSet("expensectl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	fs.StringVar(&a.cfg.BaseURL, "url", cfg.BaseURL, "API base URL (env EXPENSEHUB_URL)")
	fs.StringVar(&a.cfg.StatePath, "state", cfg.StatePath, "path of the local state database (env EXPENSEHUB_STATE)")
	fs.DurationVar(&a.cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (env EXPENSEHUB_TIMEOUT)")
	fs.BoolVar(&a.verbose, "v", false, "verbose logging")

	commander := subcommands.NewCommander(fs, "expensectl")
	commander.Output = stdout
	commander.Error = stderr
	register(commander, a)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return int(subcommands.ExitSuccess)
		}
		return int(subcommands.ExitUsageError)
	}

	defer a.close()
	return int(commander.Execute(ctx))
}

func register(c *subcommands.Commander, a *app) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&registerCmd{app: a}, "session")
	c.Register(&loginCmd{app: a}, "session")
	c.Register(&googleLoginCmd{app: a}, "session")
	c.Register(&logoutCmd{app: a}, "session")
	c.Register(&whoamiCmd{app: a}, "session")

	c.Register(&listCmd{app: a}, "expenses")
	c.Register(&addCmd{app: a}, "expenses")
	c.Register(&editCmd{app: a}, "expenses")
	c.Register(&rmCmd{app: a}, "expenses")

	c.Register(&importCmd{app: a}, "csv")
	c.Register(&exportCmd{app: a}, "csv")

	c.Register(&budgetCmd{app: a}, "reports")
	c.Register(&summaryCmd{app: a}, "reports")
}
