package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/expensehub/internal/config"
	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/geocoder89/expensehub/internal/domain/user"
	"github.com/geocoder89/expensehub/internal/observability"
	"github.com/geocoder89/expensehub/internal/repo/memory"
	"github.com/geocoder89/expensehub/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestOpenMemoryStoreIsInstrumented(t *testing.T) {
	prom := observability.NewProm(prometheus.NewRegistry())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := Open(context.Background(), config.Config{StoreURI: "memory://"}, prom, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if s.Backend != "memory" {
		t.Fatalf("backend = %q", s.Backend)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	ctx := context.Background()
	u, err := s.Users.Create(ctx, "a@x.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.Users.Create(ctx, "a@x.com", "hash"); err != user.ErrEmailTaken {
		t.Fatalf("duplicate should surface ErrEmailTaken, got %v", err)
	}

	e := expense.New(u.ID, expense.Fields{
		Amount:   decimal.NewFromInt(3),
		Category: "Food",
		Date:     expense.NewDate(2024, 3, 1),
	})
	if _, err := s.Expenses.Create(ctx, e); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if err := s.Expenses.Delete(ctx, "someone-else", e.ID); err != expense.ErrNotFound {
		t.Fatalf("delete: %v", err)
	}

	// a taken email and a foreign id are answers, not database failures
	if got := testutil.CollectAndCount(prom.DbErrorsTotal); got != 0 {
		t.Fatalf("db errors recorded = %v, want 0", got)
	}
}

type brokenExpenses struct{ err error }

func (b brokenExpenses) List(context.Context, string, expense.ListFilter) ([]expense.Expense, error) {
	return nil, b.err
}

func (b brokenExpenses) Create(context.Context, expense.Expense) (expense.Expense, error) {
	return expense.Expense{}, b.err
}

func (b brokenExpenses) Update(context.Context, string, string, expense.Fields) (expense.Expense, error) {
	return expense.Expense{}, b.err
}

func (b brokenExpenses) Delete(context.Context, string, string) error {
	return b.err
}

func TestInstrumentedExpensesCountsFailures(t *testing.T) {
	prom := observability.NewProm(prometheus.NewRegistry())
	ctx := context.Background()

	broken := &instrumentedExpenses{next: brokenExpenses{err: errors.New("connection refused")}, prom: prom}
	if _, err := broken.List(ctx, "u1", expense.ListFilter{}); err == nil {
		t.Fatalf("expected the store error")
	}
	if got := testutil.ToFloat64(prom.DbErrorsTotal.WithLabelValues("expenses.list", "connection")); got != 1 {
		t.Fatalf("expenses.list connection errors = %v, want 1", got)
	}

	missing := &instrumentedExpenses{next: brokenExpenses{err: fmt.Errorf("lookup: %w", expense.ErrNotFound)}, prom: prom}
	if err := missing.Delete(ctx, "u1", "e1"); !errors.Is(err, expense.ErrNotFound) {
		t.Fatalf("delete should still return ErrNotFound, got %v", err)
	}
	if got := testutil.CollectAndCount(prom.DbErrorsTotal); got != 1 {
		t.Fatalf("db error series = %v, want 1", got)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := Open(context.Background(), config.Config{StoreURI: "mysql://x"}, nil, log); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

type countingUsers struct {
	service.UserStore
	gets int
}

func (c *countingUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	c.gets++
	return c.UserStore.GetByID(ctx, id)
}

func TestCachedUsersGetByID(t *testing.T) {
	ctx := context.Background()
	inner := &countingUsers{UserStore: memory.NewUsersRepo()}
	users := newCachedUsers(inner)

	u, err := users.Create(ctx, "a@x.com", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := users.GetByID(ctx, u.ID)
		if err != nil || got.Email != "a@x.com" {
			t.Fatalf("GetByID = %v, %v", got, err)
		}
	}
	if inner.gets != 1 {
		t.Fatalf("store hit %d times, want 1", inner.gets)
	}

	// misses are not cached
	for i := 0; i < 2; i++ {
		if _, err := users.GetByID(ctx, "missing"); err != user.ErrNotFound {
			t.Fatalf("missing user: %v", err)
		}
	}
	if inner.gets != 3 {
		t.Fatalf("store hit %d times, want 3", inner.gets)
	}
}
