package mongo

import (
	"regexp"
	"testing"
	"time"

	"github.com/geocoder89/expensehub/internal/domain/expense"
)

func TestMonthPattern(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		date  expense.Date
		want  bool
	}{
		{name: "same_month", year: 2024, month: time.March, date: expense.NewDate(2024, time.March, 31), want: true},
		{name: "next_month", year: 2024, month: time.March, date: expense.NewDate(2024, time.April, 1), want: false},
		{name: "other_year", year: 2024, month: time.March, date: expense.NewDate(2023, time.March, 1), want: false},
		{name: "early_year", year: 5, month: time.January, date: expense.NewDate(5, time.January, 9), want: true},
		{name: "last_month", year: 9999, month: time.December, date: expense.NewDate(9999, time.December, 31), want: true},
		{name: "last_month_other", year: 9999, month: time.December, date: expense.NewDate(9999, time.November, 30), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := regexp.MustCompile(monthPattern(tt.year, tt.month))
			if got := re.MatchString(tt.date.String()); got != tt.want {
				t.Fatalf("%s against %s: got %v, want %v", tt.date, monthPattern(tt.year, tt.month), got, tt.want)
			}
		})
	}
}
