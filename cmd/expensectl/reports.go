package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/geocoder89/expensehub/internal/ledger"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type budgetCmd struct{ *app }

func (*budgetCmd) Name() string     { return "budget" }
func (*budgetCmd) Synopsis() string { return "show, set or clear the monthly budget" }
func (*budgetCmd) Usage() string {
	return `expensectl budget [set <amount> | clear]

  The budget is kept on this machine only.
`
}
func (*budgetCmd) SetFlags(_ *flag.FlagSet) {}

func (c *budgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	l := c.ledger()
	if err := l.RestoreBudget(ctx); err != nil {
		return c.fail(err)
	}

	switch f.Arg(0) {
	case "":
		b, ok := l.Budget()
		if !ok {
			fmt.Fprintln(c.stdout, "No budget set")
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(c.stdout, "Monthly budget: %s\n", b.StringFixed(2))

	case "set":
		if f.NArg() != 2 {
			return c.usage("budget set takes one amount")
		}
		amount, err := decimal.NewFromString(f.Arg(1))
		if err != nil {
			return c.usage("amount %q is not a number", f.Arg(1))
		}
		if err := l.SetBudget(ctx, amount); err != nil {
			return c.fail(err)
		}
		fmt.Fprintf(c.stdout, "Monthly budget set to %s\n", amount.StringFixed(2))

	case "clear":
		if err := l.ClearBudget(ctx); err != nil {
			return c.fail(err)
		}
		fmt.Fprintln(c.stdout, "Budget cleared")

	default:
		return c.usage("unknown budget action %q", f.Arg(0))
	}
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	*app
	month string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "spending by category, monthly trend and budget" }
func (*summaryCmd) Usage() string {
	return `expensectl summary [-month YYYY-MM]

  The category breakdown and budget use the current month unless -month is given.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "month for the category breakdown (YYYY-MM)")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.open(ctx); err != nil {
		return c.fail(err)
	}

	l := c.ledger()
	if err := l.Load(ctx); err != nil {
		return c.fail(err)
	}
	if err := l.RestoreBudget(ctx); err != nil {
		return c.fail(err)
	}

	month := l.CurrentMonth()
	if c.month != "" {
		y, m, err := parseMonth(c.month)
		if err != nil {
			return c.usage("%v", err)
		}
		filter := expense.ListFilter{Year: y, Month: m}
		month = nil
		for _, e := range l.Expenses() {
			if filter.Matches(e) {
				month = append(month, e)
			}
		}
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Total\t%s\n", ledger.Total(l.Expenses()).StringFixed(2))
	fmt.Fprintf(tw, "This month\t%s\n", ledger.Total(month).StringFixed(2))
	if budget, ok := l.Budget(); ok {
		s := ledger.CompareBudget(budget, ledger.Total(month))
		state := "remaining"
		if s.Over {
			state = "over budget"
		}
		fmt.Fprintf(tw, "Budget\t%s (%s%% used, %s %s)\n",
			s.Budget.StringFixed(2), s.Percent.StringFixed(1), s.Remaining.Abs().StringFixed(2), state)
	}

	fmt.Fprintln(tw, "\nBY CATEGORY\t")
	cats := ledger.ByCategory(month)
	if len(cats) == 0 {
		fmt.Fprintln(tw, "(none)\t")
	}
	for _, ct := range cats {
		fmt.Fprintf(tw, "%s\t%s\n", ct.Category, ct.Total.StringFixed(2))
	}

	fmt.Fprintln(tw, "\nMONTHLY TREND\t")
	for _, mt := range ledger.MonthlyTrend(l.Expenses()) {
		fmt.Fprintf(tw, "%s\t%s\n", mt.Label(), mt.Total.StringFixed(2))
	}

	if err := tw.Flush(); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}
