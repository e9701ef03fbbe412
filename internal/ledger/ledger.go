// Package ledger holds the client-side snapshot of a user's expenses. Every
// mutation is a round trip to the API followed by a local apply, so the
// snapshot only ever contains server records.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/expensehub/internal/apperr"
	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultImportConcurrency = 4

var ErrNegativeBudget = errors.New("budget must not be negative")

// API is the subset of the HTTP client the ledger needs.
type API interface {
	List(ctx context.Context, filter expense.ListFilter) ([]expense.Expense, error)
	Create(ctx context.Context, in expense.Input) (expense.Expense, error)
	Update(ctx context.Context, id string, in expense.Input) (expense.Expense, error)
	Delete(ctx context.Context, id string) error
}

// BudgetStore persists the monthly budget on this machine only.
type BudgetStore interface {
	LoadBudget(ctx context.Context) (decimal.Decimal, bool, error)
	SaveBudget(ctx context.Context, amount decimal.Decimal) error
	ClearBudget(ctx context.Context) error
}

type Option func(*Ledger)

// WithClock replaces time.Now, which decides "today" and the current month.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithImportConcurrency bounds how many creates Import runs at once.
func WithImportConcurrency(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.importLimit = n
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

type Ledger struct {
	api     API
	budgets BudgetStore

	now         func() time.Time
	importLimit int
	log         *slog.Logger

	records keyedMutex

	mu        sync.RWMutex
	items     []expense.Expense
	budget    decimal.Decimal
	hasBudget bool
}

func New(api API, budgets BudgetStore, opts ...Option) *Ledger {
	l := &Ledger{
		api:         api,
		budgets:     budgets,
		now:         time.Now,
		importLimit: defaultImportConcurrency,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the snapshot with the server's list. On failure the snapshot
// is left empty.
func (l *Ledger) Load(ctx context.Context) error {
	items, err := l.api.List(ctx, expense.ListFilter{})

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.items = nil
		return fmt.Errorf("load expenses: %w", err)
	}
	l.items = slices.Clone(items)
	return nil
}

// Add creates an expense from a draft. An empty date means today.
func (l *Ledger) Add(ctx context.Context, d expense.Draft) (expense.Expense, error) {
	in, err := l.prepare(d)
	if err != nil {
		return expense.Expense{}, err
	}

	created, err := l.api.Create(ctx, in)
	if err != nil {
		return expense.Expense{}, err
	}

	l.mu.Lock()
	l.items = append(l.items, created)
	l.mu.Unlock()

	return created, nil
}

// Update sends the full record and replaces it by id on success.
func (l *Ledger) Update(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	if e.ID == "" {
		return expense.Expense{}, apperr.E(apperr.InvalidInput, "expense id is required")
	}
	in := e.Input()
	if _, err := in.Validate(); err != nil {
		return expense.Expense{}, apperr.Wrap(apperr.InvalidInput, "amount, category, date required", err)
	}

	unlock := l.records.Lock(e.ID)
	defer unlock()

	saved, err := l.api.Update(ctx, e.ID, in)
	if err != nil {
		return expense.Expense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(saved.ID); i >= 0 {
		l.items[i] = saved
	} else {
		l.items = append(l.items, saved)
	}
	return saved, nil
}

// Delete removes the expense on the server, then locally.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	unlock := l.records.Lock(id)
	defer unlock()

	if err := l.api.Delete(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(id); i >= 0 {
		l.items = slices.Delete(l.items, i, i+1)
	}
	return nil
}

// RowError is one draft Import could not create. Index is its position in
// the drafts slice.
type RowError struct {
	Index int
	Err   error
}

type ImportReport struct {
	Created []expense.Expense
	Failed  []RowError
}

// Import creates every draft on the server. Created records are applied to
// the snapshot in one step once all round trips finish; failed drafts never
// enter it. The returned error is non-nil only when ctx ended early.
func (l *Ledger) Import(ctx context.Context, drafts []expense.Draft) (ImportReport, error) {
	created := make([]*expense.Expense, len(drafts))
	failed := make([]error, len(drafts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.importLimit)

	for i, d := range drafts {
		in, err := l.prepare(d)
		if err != nil {
			failed[i] = err
			continue
		}

		g.Go(func() error {
			e, err := l.api.Create(gctx, in)
			if err != nil {
				failed[i] = err
				return nil
			}
			created[i] = &e
			return nil
		})
	}
	_ = g.Wait()

	var report ImportReport
	for i := range drafts {
		switch {
		case created[i] != nil:
			report.Created = append(report.Created, *created[i])
		case failed[i] != nil:
			report.Failed = append(report.Failed, RowError{Index: i, Err: failed[i]})
		}
	}

	l.mu.Lock()
	l.items = append(l.items, report.Created...)
	l.mu.Unlock()

	l.log.Info("import finished", "created", len(report.Created), "failed", len(report.Failed))

	return report, ctx.Err()
}

// Expenses returns a copy of the snapshot, newest first.
func (l *Ledger) Expenses() []expense.Expense {
	l.mu.RLock()
	out := slices.Clone(l.items)
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return expense.Less(out[i], out[j]) })
	return out
}

// CurrentMonth returns the expenses dated in the ledger clock's current month.
func (l *Ledger) CurrentMonth() []expense.Expense {
	today := expense.DateOf(l.now())
	filter := expense.ListFilter{Year: today.Year(), Month: today.Month()}

	var out []expense.Expense
	for _, e := range l.Expenses() {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Categories returns the default vocabulary followed by any other category
// present in the snapshot, sorted.
func (l *Ledger) Categories() []string {
	out := expense.DefaultCategories()
	known := make(map[string]bool, len(out))
	for _, c := range out {
		known[c] = true
	}

	var extra []string
	l.mu.RLock()
	for _, e := range l.items {
		if !known[e.Category] {
			known[e.Category] = true
			extra = append(extra, e.Category)
		}
	}
	l.mu.RUnlock()

	sort.Strings(extra)
	return append(out, extra...)
}

// RestoreBudget reads the persisted budget into memory.
func (l *Ledger) RestoreBudget(ctx context.Context) error {
	amount, ok, err := l.budgets.LoadBudget(ctx)
	if err != nil {
		return fmt.Errorf("load budget: %w", err)
	}

	l.mu.Lock()
	l.budget, l.hasBudget = amount, ok
	l.mu.Unlock()
	return nil
}

// Budget returns the monthly budget and whether one is set.
func (l *Ledger) Budget() (decimal.Decimal, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.budget, l.hasBudget
}

func (l *Ledger) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperr.Wrap(apperr.InvalidInput, "budget must not be negative", ErrNegativeBudget)
	}
	if err := l.budgets.SaveBudget(ctx, amount); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}

	l.mu.Lock()
	l.budget, l.hasBudget = amount, true
	l.mu.Unlock()
	return nil
}

func (l *Ledger) ClearBudget(ctx context.Context) error {
	if err := l.budgets.ClearBudget(ctx); err != nil {
		return fmt.Errorf("clear budget: %w", err)
	}

	l.mu.Lock()
	l.budget, l.hasBudget = decimal.Zero, false
	l.mu.Unlock()
	return nil
}

// BudgetStatus compares the current month's spending with the budget.
// ok is false when no budget is set.
func (l *Ledger) BudgetStatus() (status BudgetStatus, ok bool) {
	budget, ok := l.Budget()
	if !ok {
		return BudgetStatus{}, false
	}
	return CompareBudget(budget, Total(l.CurrentMonth())), true
}

func (l *Ledger) prepare(d expense.Draft) (expense.Input, error) {
	in, err := d.ToInput(expense.DateOf(l.now()))
	if err != nil {
		return expense.Input{}, apperr.Wrap(apperr.InvalidInput, "amount must be a number", err)
	}
	if _, err := in.Validate(); err != nil {
		return expense.Input{}, apperr.Wrap(apperr.InvalidInput, "amount, category, date required", err)
	}
	return in, nil
}

// indexOf expects l.mu to be held.
func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.items, func(e expense.Expense) bool { return e.ID == id })
}
