package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/expensehub/internal/domain/expense"
)

type ExpensesRepo struct {
	mu    sync.RWMutex
	items map[string]expense.Expense // id -> expense
}

func NewExpensesRepo() *ExpensesRepo {
	return &ExpensesRepo{
		items: make(map[string]expense.Expense),
	}
}

func (r *ExpensesRepo) Create(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	r.mu.Lock()
	r.items[e.ID] = e
	r.mu.Unlock()

	return e, nil
}

func (r *ExpensesRepo) List(ctx context.Context, ownerID string, filter expense.ListFilter) ([]expense.Expense, error) {
	r.mu.RLock()
	out := make([]expense.Expense, 0)
	for _, e := range r.items {
		if e.OwnerID == ownerID && filter.Matches(e) {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return expense.Less(out[i], out[j]) })

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *ExpensesRepo) Update(ctx context.Context, ownerID, id string, f expense.Fields) (expense.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	// someone else's row looks exactly like a missing one
	if !ok || e.OwnerID != ownerID {
		return expense.Expense{}, expense.ErrNotFound
	}

	e = e.Apply(f)
	r.items[id] = e
	return e, nil
}

func (r *ExpensesRepo) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok || e.OwnerID != ownerID {
		return expense.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
