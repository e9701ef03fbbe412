package ledger

import (
	"sort"
	"time"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// ByCategory sums amounts per category, largest first. Categories that sum
// to zero are left out.
func ByCategory(items []expense.Expense) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range items {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for c, total := range sums {
		if total.IsZero() {
			continue
		}
		out = append(out, CategoryTotal{Category: c, Total: total})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type MonthTotal struct {
	Year  int             `json:"year"`
	Month time.Month      `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Label renders the bucket as YYYY-MM.
func (m MonthTotal) Label() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MonthlyTrend sums amounts per calendar month, oldest first. Months with no
// expenses are not filled in.
func MonthlyTrend(items []expense.Expense) []MonthTotal {
	type key struct {
		y int
		m time.Month
	}
	sums := make(map[key]decimal.Decimal)
	for _, e := range items {
		k := key{e.Date.Year(), e.Date.Month()}
		sums[k] = sums[k].Add(e.Amount)
	}

	out := make([]MonthTotal, 0, len(sums))
	for k, total := range sums {
		out = append(out, MonthTotal{Year: k.y, Month: k.m, Total: total})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func Total(items []expense.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range items {
		sum = sum.Add(e.Amount)
	}
	return sum
}

type BudgetStatus struct {
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	// Percent of the budget used, one decimal place. Zero when the budget is zero.
	Percent decimal.Decimal `json:"percent"`
	Over    bool            `json:"over"`
}

func CompareBudget(budget, spent decimal.Decimal) BudgetStatus {
	s := BudgetStatus{
		Budget:    budget,
		Spent:     spent,
		Remaining: budget.Sub(spent),
		Percent:   decimal.Zero,
		Over:      spent.GreaterThan(budget),
	}
	if budget.IsPositive() {
		s.Percent = spent.Mul(hundred).DivRound(budget, 1)
	}
	return s
}
