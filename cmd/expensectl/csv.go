package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/geocoder89/expensehub/internal/csvio"
	"github.com/google/subcommands"
)

type importCmd struct{ *app }

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "create expenses from a CSV file" }
func (*importCmd) Usage() string {
	return `expensectl import <file.csv | ->

  The file needs a header naming Date, Category and Amount (Note is optional).
  Rows with a missing field or an amount that is not above zero are skipped.
`
}
func (*importCmd) SetFlags(_ *flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.usage("import takes exactly one file")
	}

	var r io.Reader = c.stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return c.fail(err)
		}
		defer file.Close()
		r = file
	}

	parsed, err := csvio.Import(r)
	for _, rej := range parsed.Rejected {
		fmt.Fprintf(c.stderr, "skipped line %d: %s\n", rej.Line, rej.Reason)
	}
	if err != nil {
		return c.fail(err)
	}

	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	report, err := c.ledger().Import(ctx, parsed.Drafts)
	for _, rowErr := range report.Failed {
		fmt.Fprintf(c.stderr, "row %d not imported: %v\n", rowErr.Index+1, rowErr.Err)
	}
	if err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.stdout, "Imported %d expenses (%d skipped, %d failed)\n",
		len(report.Created), len(parsed.Rejected), len(report.Failed))
	if len(report.Failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	*app
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write all expenses to a CSV file" }
func (*exportCmd) Usage() string {
	return `expensectl export [-o <file.csv | ->]

  Defaults to expenses_YYYY-MM-DD.csv in the current directory.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "output file, - for stdout")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	l := c.ledger()
	if err := l.Load(ctx); err != nil {
		return c.fail(err)
	}
	items := l.Expenses()
	if len(items) == 0 {
		return c.fail(csvio.ErrNothingToExport)
	}

	if c.out == "-" {
		if err := csvio.Export(c.stdout, items); err != nil {
			return c.fail(err)
		}
		return subcommands.ExitSuccess
	}

	name := c.out
	if name == "" {
		name = csvio.ExportFileName(time.Now())
	}
	file, err := os.Create(name)
	if err != nil {
		return c.fail(err)
	}
	err = errors.Join(csvio.Export(file, items), file.Close())
	if err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.stdout, "Exported %d expenses to %s\n", len(items), name)
	return subcommands.ExitSuccess
}
