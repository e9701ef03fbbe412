package db

import (
	"context"
	"errors"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/geocoder89/expensehub/internal/domain/user"
	"github.com/geocoder89/expensehub/internal/observability"
	"github.com/geocoder89/expensehub/internal/service"
)

// observe records fn under op. Not-found and duplicate-email results are
// ordinary answers to the caller and are not counted as database errors.
func observe(prom *observability.Prom, op string, fn func() error) error {
	var err error
	_ = prom.ObserveDB(op, func() error {
		err = fn()
		if isOutcome(err) {
			return nil
		}
		return err
	})
	return err
}

func isOutcome(err error) bool {
	return errors.Is(err, expense.ErrNotFound) ||
		errors.Is(err, user.ErrNotFound) ||
		errors.Is(err, user.ErrEmailTaken)
}

type instrumentedUsers struct {
	next service.UserStore
	prom *observability.Prom
}

func (s *instrumentedUsers) Create(ctx context.Context, email, passwordHash string) (u user.User, err error) {
	err = observe(s.prom, "users.create", func() error {
		u, err = s.next.Create(ctx, email, passwordHash)
		return err
	})
	return u, err
}

func (s *instrumentedUsers) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = observe(s.prom, "users.get_by_email", func() error {
		u, err = s.next.GetByEmail(ctx, email)
		return err
	})
	return u, err
}

func (s *instrumentedUsers) GetByID(ctx context.Context, id string) (u user.User, err error) {
	err = observe(s.prom, "users.get_by_id", func() error {
		u, err = s.next.GetByID(ctx, id)
		return err
	})
	return u, err
}

type instrumentedExpenses struct {
	next service.ExpenseStore
	prom *observability.Prom
}

func (s *instrumentedExpenses) List(ctx context.Context, ownerID string, filter expense.ListFilter) (items []expense.Expense, err error) {
	err = observe(s.prom, "expenses.list", func() error {
		items, err = s.next.List(ctx, ownerID, filter)
		return err
	})
	return items, err
}

func (s *instrumentedExpenses) Create(ctx context.Context, e expense.Expense) (out expense.Expense, err error) {
	err = observe(s.prom, "expenses.create", func() error {
		out, err = s.next.Create(ctx, e)
		return err
	})
	return out, err
}

func (s *instrumentedExpenses) Update(ctx context.Context, ownerID, id string, f expense.Fields) (out expense.Expense, err error) {
	err = observe(s.prom, "expenses.update", func() error {
		out, err = s.next.Update(ctx, ownerID, id, f)
		return err
	})
	return out, err
}

func (s *instrumentedExpenses) Delete(ctx context.Context, ownerID, id string) error {
	return observe(s.prom, "expenses.delete", func() error {
		return s.next.Delete(ctx, ownerID, id)
	})
}
