package ledger_test

import (
	"testing"
	"time"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/geocoder89/expensehub/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exp(amount, category string, y int, m time.Month, d int) expense.Expense {
	return expense.Expense{
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     expense.NewDate(y, m, d),
	}
}

func TestByCategory(t *testing.T) {
	items := []expense.Expense{
		exp("10.10", "Food", 2024, 3, 1),
		exp("0", "Bills", 2024, 3, 2),
		exp("40", "Travel", 2024, 3, 3),
		exp("5.20", "Food", 2024, 2, 1),
		exp("0.30", "Misc", 2024, 1, 1),
	}

	got := ledger.ByCategory(items)
	require.Len(t, got, 3)
	assert.Equal(t, "Travel", got[0].Category)
	assert.Equal(t, "Food", got[1].Category)
	assert.Equal(t, "15.3", got[1].Total.String())
	assert.Equal(t, "Misc", got[2].Category)

	sum := decimal.Zero
	for _, c := range got {
		sum = sum.Add(c.Total)
	}
	assert.True(t, sum.Equal(ledger.Total(items)), "category totals should add up to the overall total")

	assert.Empty(t, ledger.ByCategory(nil))
}

func TestMonthlyTrend(t *testing.T) {
	items := []expense.Expense{
		exp("1", "Food", 2024, 3, 1),
		exp("2", "Food", 2023, 12, 31),
		exp("3", "Food", 2024, 3, 30),
		exp("4", "Food", 2024, 1, 15),
	}

	got := ledger.MonthlyTrend(items)
	require.Len(t, got, 3)
	assert.Equal(t, "2023-12", got[0].Label())
	assert.Equal(t, "2024-01", got[1].Label())
	assert.Equal(t, "2024-03", got[2].Label())
	assert.Equal(t, "4", got[2].Total.String())
}

func TestCompareBudget(t *testing.T) {
	tests := []struct {
		name      string
		budget    string
		spent     string
		remaining string
		percent   string
		over      bool
	}{
		{"under", "200", "50", "150", "25", false},
		{"exact", "100", "100", "0", "100", false},
		{"over", "100", "133.333", "-33.333", "133.3", true},
		{"zero budget", "0", "10", "-10", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledger.CompareBudget(decimal.RequireFromString(tt.budget), decimal.RequireFromString(tt.spent))
			assert.Equal(t, tt.remaining, s.Remaining.String())
			assert.Equal(t, tt.percent, s.Percent.String())
			assert.Equal(t, tt.over, s.Over)
		})
	}
}
