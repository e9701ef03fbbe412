package service

import (
	"context"
	"errors"

	"github.com/geocoder89/expensehub/internal/apperr"
	"github.com/geocoder89/expensehub/internal/domain/expense"
)

const msgNotFound = "Not found"

// LedgerService is the ownership-scoped expense API. Callers pass the
// verified user id; rows owned by anyone else are reported as NotFound.
type LedgerService struct {
	store ExpenseStore
}

func NewLedgerService(store ExpenseStore) *LedgerService {
	return &LedgerService{store: store}
}

func (s *LedgerService) List(ctx context.Context, uid string, filter expense.ListFilter) ([]expense.Expense, error) {
	if uid == "" {
		return nil, apperr.E(apperr.Unauthorized, "Unauthorized")
	}
	if filter.Limit < 0 {
		return nil, apperr.E(apperr.InvalidInput, "limit must be positive")
	}

	items, err := s.store.List(ctx, uid, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Could not list expenses", err)
	}
	return items, nil
}

func (s *LedgerService) Create(ctx context.Context, uid string, in expense.Input) (expense.Expense, error) {
	if uid == "" {
		return expense.Expense{}, apperr.E(apperr.Unauthorized, "Unauthorized")
	}
	fields, err := in.Validate()
	if err != nil {
		return expense.Expense{}, apperr.Wrap(apperr.InvalidInput, "amount, category, date required", err)
	}

	created, err := s.store.Create(ctx, expense.New(uid, fields))
	if err != nil {
		return expense.Expense{}, apperr.Wrap(apperr.Internal, "Could not create expense", err)
	}
	return created, nil
}

func (s *LedgerService) Update(ctx context.Context, uid, id string, in expense.Input) (expense.Expense, error) {
	if uid == "" {
		return expense.Expense{}, apperr.E(apperr.Unauthorized, "Unauthorized")
	}
	fields, err := in.Validate()
	if err != nil {
		return expense.Expense{}, apperr.Wrap(apperr.InvalidInput, "amount, category, date required", err)
	}

	updated, err := s.store.Update(ctx, uid, id, fields)
	if err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			return expense.Expense{}, apperr.Wrap(apperr.NotFound, msgNotFound, err)
		}
		return expense.Expense{}, apperr.Wrap(apperr.Internal, "Could not update expense", err)
	}
	return updated, nil
}

func (s *LedgerService) Delete(ctx context.Context, uid, id string) error {
	if uid == "" {
		return apperr.E(apperr.Unauthorized, "Unauthorized")
	}

	if err := s.store.Delete(ctx, uid, id); err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			return apperr.Wrap(apperr.NotFound, msgNotFound, err)
		}
		return apperr.Wrap(apperr.Internal, "Could not delete expense", err)
	}
	return nil
}
