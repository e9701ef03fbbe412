package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

func printExpenses(w io.Writer, items []expense.Expense) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tNOTE")
	for _, e := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Category, e.Amount.StringFixed(2), e.Note)
	}
	tw.Flush()
}

type listCmd struct {
	*app
	month  string
	limit  int
	asJSON bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list expenses, newest first" }
func (*listCmd) Usage() string {
	return `expensectl list [-month YYYY-MM] [-limit N] [-json]
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "only expenses dated in this month (YYYY-MM)")
	f.IntVar(&c.limit, "limit", 0, "maximum number of expenses")
	f.BoolVar(&c.asJSON, "json", false, "print JSON instead of a table")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var filter expense.ListFilter
	if c.month != "" {
		y, m, err := parseMonth(c.month)
		if err != nil {
			return c.usage("%v", err)
		}
		filter.Year, filter.Month = y, m
	}
	if c.limit < 0 {
		return c.usage("-limit must be positive")
	}
	filter.Limit = c.limit

	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	items, err := c.client.List(ctx, filter)
	if err != nil {
		return c.fail(err)
	}

	if c.asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return c.fail(err)
		}
		return subcommands.ExitSuccess
	}

	if len(items) == 0 {
		fmt.Fprintln(c.stdout, "No expenses")
		return subcommands.ExitSuccess
	}
	printExpenses(c.stdout, items)
	return subcommands.ExitSuccess
}

type addCmd struct {
	*app
	draft expense.Draft
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an expense" }
func (*addCmd) Usage() string {
	return `expensectl add -amount <n> -category <name> [-date YYYY-MM-DD] [-note <text>]

  The date defaults to today.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.draft.Amount, "amount", "", "amount, for example 12.50")
	f.StringVar(&c.draft.Category, "category", "", "category, for example Food")
	f.StringVar(&c.draft.Date, "date", "", "date (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.draft.Note, "note", "", "optional note")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.draft.Amount == "" || c.draft.Category == "" {
		return c.usage("-amount and -category are required")
	}
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	e, err := c.ledger().Add(ctx, c.draft)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.stdout, "Added %s: %s %s on %s\n", e.ID, e.Amount.StringFixed(2), e.Category, e.Date)
	return subcommands.ExitSuccess
}

type editCmd struct {
	*app
	amount   string
	category string
	date     string
	note     string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change an expense" }
func (*editCmd) Usage() string {
	return `expensectl edit [-amount <n>] [-category <name>] [-date YYYY-MM-DD] [-note <text>] <id>

  Fields left out keep their current value.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "new amount")
	f.StringVar(&c.category, "category", "", "new category")
	f.StringVar(&c.date, "date", "", "new date (YYYY-MM-DD)")
	f.StringVar(&c.note, "note", "", "new note")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.usage("edit takes exactly one expense id")
	}
	id := f.Arg(0)

	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	l := c.ledger()
	if err := l.Load(ctx); err != nil {
		return c.fail(err)
	}

	var cur *expense.Expense
	for _, e := range l.Expenses() {
		if e.ID == id {
			cur = &e
			break
		}
	}
	if cur == nil {
		return c.fail(fmt.Errorf("no expense with id %s", id))
	}

	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["amount"] {
		amount, err := decimal.NewFromString(c.amount)
		if err != nil {
			return c.usage("-amount %q is not a number", c.amount)
		}
		cur.Amount = amount
	}
	if set["category"] {
		cur.Category = c.category
	}
	if set["date"] {
		d, err := expense.ParseDate(c.date)
		if err != nil {
			return c.usage("%v", err)
		}
		cur.Date = d
	}
	if set["note"] {
		cur.Note = c.note
	}

	saved, err := l.Update(ctx, *cur)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.stdout, "Updated %s: %s %s on %s\n", saved.ID, saved.Amount.StringFixed(2), saved.Category, saved.Date)
	return subcommands.ExitSuccess
}

type rmCmd struct{ *app }

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete expenses" }
func (*rmCmd) Usage() string {
	return `expensectl rm <id>...
`
}
func (*rmCmd) SetFlags(_ *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return c.usage("rm needs at least one expense id")
	}
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	l := c.ledger()
	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		if err := l.Delete(ctx, id); err != nil {
			fmt.Fprintf(c.stderr, "Error: %s: %v\n", id, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Fprintf(c.stdout, "Deleted %s\n", id)
	}
	return status
}
