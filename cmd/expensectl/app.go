package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/geocoder89/expensehub/internal/client"
	"github.com/geocoder89/expensehub/internal/config"
	"github.com/geocoder89/expensehub/internal/ledger"
	"github.com/geocoder89/expensehub/internal/localstore"
	"github.com/google/subcommands"
	"golang.org/x/term"
)

// app is shared by every subcommand; open is called lazily by the ones that
// need the API or local state.
type app struct {
	cfg     config.ClientConfig
	verbose bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	store  *localstore.Store
	client *client.Client
	log    *slog.Logger
}

func (a *app) open(ctx context.Context) error {
	if a.client != nil {
		return nil
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	store, err := localstore.Open(a.cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open local state: %w", err)
	}

	session := client.NewSession(store)
	if err := session.Restore(ctx); err != nil {
		store.Close()
		return err
	}

	a.store = store
	a.client = client.New(a.cfg.BaseURL, a.cfg.Timeout, session)
	a.log.Debug("client ready", "url", a.cfg.BaseURL, "state", a.cfg.StatePath, "signed_in", session.SignedIn())
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

func (a *app) ledger() *ledger.Ledger {
	return ledger.New(a.client, a.store, ledger.WithLogger(a.log))
}

func (a *app) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func (a *app) usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(a.stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}

// readPassword prompts on stderr. Non-terminal input is read line by line.
func (a *app) readPassword(prompt string) (string, error) {
	fmt.Fprint(a.stderr, prompt)
	defer fmt.Fprintln(a.stderr)

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(a.stdin)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// parseMonth reads YYYY-MM.
func parseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month %q: expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}
