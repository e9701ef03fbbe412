package expense

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{name: "ok", in: Input{Amount: dec("12.5"), Category: "Food", Date: "2024-03-01"}},
		{name: "zero_amount_ok", in: Input{Amount: dec("0"), Category: "Food", Date: "2024-03-01"}},
		{name: "missing_amount", in: Input{Category: "Food", Date: "2024-03-01"}, wantErr: ErrInvalidAmount},
		{name: "negative_amount", in: Input{Amount: dec("-1"), Category: "Food", Date: "2024-03-01"}, wantErr: ErrInvalidAmount},
		{name: "blank_category", in: Input{Amount: dec("1"), Category: "  ", Date: "2024-03-01"}, wantErr: ErrMissingCategory},
		{name: "missing_date", in: Input{Amount: dec("1"), Category: "Food"}, wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.in.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !f.Amount.Equal(*tt.in.Amount) || f.Category != tt.in.Category {
				t.Fatalf("unexpected fields: %+v", f)
			}
		})
	}
}

func TestExpenseJSONAmountIsNumber(t *testing.T) {
	e := New("u1", Fields{Amount: decimal.RequireFromString("12.5"), Category: "Food", Date: NewDate(2024, time.March, 1)})

	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"amount":12.5`) {
		t.Fatalf("amount should be a JSON number: %s", b)
	}
	if !strings.Contains(string(b), `"date":"2024-03-01"`) {
		t.Fatalf("date should be YYYY-MM-DD: %s", b)
	}
}

func TestLessOrdersNewestFirst(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []Expense{
		{ID: "a", Date: NewDate(2024, time.March, 1), CreatedAt: base},
		{ID: "b", Date: NewDate(2024, time.March, 2), CreatedAt: base},
		{ID: "c", Date: NewDate(2024, time.March, 1), CreatedAt: base.Add(time.Minute)},
	}

	sort.Slice(items, func(i, j int) bool { return Less(items[i], items[j]) })

	got := items[0].ID + items[1].ID + items[2].ID
	if got != "bca" {
		t.Fatalf("got order %s, want bca", got)
	}
}

func TestDraftToInput(t *testing.T) {
	today := NewDate(2024, time.May, 7)

	in, err := Draft{Amount: " 3.20 ", Category: "Bills"}.ToInput(today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Date != "2024-05-07" {
		t.Fatalf("empty date should default to today, got %q", in.Date)
	}
	if !in.Amount.Equal(decimal.RequireFromString("3.2")) {
		t.Fatalf("amount not coerced: %s", in.Amount)
	}

	if _, err := (Draft{Amount: "abc", Category: "Bills"}).ToInput(today); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
