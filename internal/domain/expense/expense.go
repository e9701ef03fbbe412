package expense

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts travel as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrInvalidAmount   = errors.New("amount must be a non-negative number")
	ErrMissingCategory = errors.New("category is required")
	ErrNotFound        = errors.New("expense not found")
)

type Expense struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Date      Date            `json:"date"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Input carries the four mutable fields for create and full-replace update.
type Input struct {
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Category string           `json:"category" binding:"required,max=64"`
	Date     string           `json:"date" binding:"required"`
	Note     string           `json:"note" binding:"max=500"`
}

// Fields is a validated Input.
type Fields struct {
	Amount   decimal.Decimal
	Category string
	Date     Date
	Note     string
}

// with zero values meaning "no filter"
type ListFilter struct {
	Year  int
	Month time.Month
	Limit int
}

// HasMonth reports whether the filter restricts results to one calendar month.
func (f ListFilter) HasMonth() bool {
	return f.Year != 0 && f.Month != 0
}

// Matches applies the month part of the filter to a single expense.
func (f ListFilter) Matches(e Expense) bool {
	if !f.HasMonth() {
		return true
	}
	return e.Date.InMonth(f.Year, f.Month)
}

// Less orders expenses newest first: date desc, then createdAt desc, then id desc.
func Less(a, b Expense) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c > 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// DefaultCategories is the fixed category vocabulary offered to users.
func DefaultCategories() []string {
	return []string{"Food", "Travel", "Bills", "Shopping", "Entertainment", "Healthcare", "Education", "Misc"}
}
