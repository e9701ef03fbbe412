package expense

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validate checks an Input and converts it to Fields.
func (in Input) Validate() (Fields, error) {
	if in.Amount == nil || in.Amount.IsNegative() {
		return Fields{}, ErrInvalidAmount
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return Fields{}, ErrMissingCategory
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Fields{}, err
	}

	return Fields{
		Amount:   *in.Amount,
		Category: category,
		Date:     date,
		Note:     strings.TrimSpace(in.Note),
	}, nil
}

// New builds a fresh expense owned by ownerID.
func New(ownerID string, f Fields) Expense {
	now := time.Now().UTC()

	return Expense{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Amount:    f.Amount,
		Category:  f.Category,
		Date:      f.Date,
		Note:      f.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply replaces the mutable fields of e.
func (e Expense) Apply(f Fields) Expense {
	e.Amount = f.Amount
	e.Category = f.Category
	e.Date = f.Date
	e.Note = f.Note
	e.UpdatedAt = time.Now().UTC()
	return e
}

// Input converts a stored expense back to its request form.
func (e Expense) Input() Input {
	amount := e.Amount
	return Input{
		Amount:   &amount,
		Category: e.Category,
		Date:     e.Date.String(),
		Note:     e.Note,
	}
}

// Draft is an unsaved expense as typed in a form or read from a CSV row.
type Draft struct {
	Amount   string
	Category string
	Date     string
	Note     string
}

// ToInput coerces the draft into a request: the amount is parsed as a decimal
// and an empty date defaults to today.
func (d Draft) ToInput(today Date) (Input, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(d.Amount))
	if err != nil {
		return Input{}, ErrInvalidAmount
	}

	date := strings.TrimSpace(d.Date)
	if date == "" {
		date = today.String()
	}

	return Input{
		Amount:   &amount,
		Category: strings.TrimSpace(d.Category),
		Date:     date,
		Note:     strings.TrimSpace(d.Note),
	}, nil
}
