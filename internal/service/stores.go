package service

import (
	"context"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/geocoder89/expensehub/internal/domain/user"
)

// UserStore is the credential store. Implementations return
// user.ErrNotFound and user.ErrEmailTaken.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

// ExpenseStore is the ledger store. Every call is scoped by owner;
// implementations return expense.ErrNotFound for rows the owner cannot see.
type ExpenseStore interface {
	List(ctx context.Context, ownerID string, filter expense.ListFilter) ([]expense.Expense, error)
	Create(ctx context.Context, e expense.Expense) (expense.Expense, error)
	Update(ctx context.Context, ownerID, id string, f expense.Fields) (expense.Expense, error)
	Delete(ctx context.Context, ownerID, id string) error
}
