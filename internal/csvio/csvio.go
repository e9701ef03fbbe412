// Package csvio reads and writes the ledger's CSV interchange format:
// a header row of Date,Category,Amount,Note followed by one row per expense.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/geocoder89/expensehub/internal/apperr"
	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/shopspring/decimal"
)

var (
	ErrNothingToExport = errors.New("no expenses to export")
	ErrNoValidRows     = apperr.E(apperr.InvalidInput, "No valid expenses found in CSV")
	ErrMissingHeader   = apperr.E(apperr.InvalidInput, "CSV header must name Date, Category and Amount columns")
)

var header = []string{"Date", "Category", "Amount", "Note"}

// ExportFileName is the default name for an export taken at now.
func ExportFileName(now time.Time) string {
	return "expenses_" + now.Format(expense.DateFormat) + ".csv"
}

// Export writes items in the order given.
func Export(w io.Writer, items []expense.Expense) error {
	if len(items) == 0 {
		return ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range items {
		row := []string{e.Date.String(), e.Category, e.Amount.String(), e.Note}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Rejection is a data row that Import skipped. Line is 1-based and counts
// the header.
type Rejection struct {
	Line   int
	Reason string
}

type Result struct {
	Drafts   []expense.Draft
	Rejected []Rejection
}

// Import parses r into drafts. Rows with a blank Date, Category or Amount,
// or an Amount that is not a number above zero, are rejected individually.
// The whole import fails with ErrNoValidRows when nothing survives.
func Import(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, ErrNoValidRows
	}
	if err != nil {
		return Result{}, apperr.Wrap(apperr.InvalidInput, "Failed to parse CSV", err)
	}

	cols, err := columnIndex(head)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, apperr.Wrap(apperr.InvalidInput, "Failed to parse CSV", err)
		}
		line, _ := cr.FieldPos(0)

		d := expense.Draft{
			Date:     cols.get(rec, "date"),
			Category: cols.get(rec, "category"),
			Amount:   cols.get(rec, "amount"),
			Note:     cols.get(rec, "note"),
		}

		if reason := check(d); reason != "" {
			res.Rejected = append(res.Rejected, Rejection{Line: line, Reason: reason})
			continue
		}
		res.Drafts = append(res.Drafts, d)
	}

	if len(res.Drafts) == 0 {
		return res, ErrNoValidRows
	}
	return res, nil
}

func check(d expense.Draft) string {
	if d.Amount == "" || d.Category == "" || d.Date == "" {
		return "missing required fields (Amount, Category, Date)"
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return fmt.Sprintf("amount %q is not a number", d.Amount)
	}
	if !amount.IsPositive() {
		return "amount must be greater than zero"
	}
	return ""
}

type columns map[string]int

func columnIndex(head []string) (columns, error) {
	cols := make(columns, len(head))
	for i, name := range head {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"date", "category", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, ErrMissingHeader
		}
	}
	return cols, nil
}

func (c columns) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
