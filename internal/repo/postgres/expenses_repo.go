package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// amount and date are exchanged as text so decimals and calendar dates
// survive without float or timezone conversion
const expenseColumns = `id, user_id, amount::text, category, date::text, note, created_at, updated_at`

type ExpensesRepo struct {
	pool *pgxpool.Pool
}

func NewExpensesRepo(pool *pgxpool.Pool) *ExpensesRepo {
	return &ExpensesRepo{
		pool: pool,
	}
}

func (r *ExpensesRepo) Create(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO expenses (id, user_id, amount, category, date, note, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5::date, $6, $7, $8)`,
		e.ID, e.OwnerID, e.Amount.String(), e.Category, e.Date.String(), e.Note, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return expense.Expense{}, err
	}

	return e, nil
}

func (r *ExpensesRepo) List(ctx context.Context, ownerID string, filter expense.ListFilter) ([]expense.Expense, error) {
	conds := []string{"user_id = $1"}
	args := []interface{}{ownerID}
	argsPosition := 2

	if filter.HasMonth() {
		from := expense.NewDate(filter.Year, filter.Month, 1)
		to := expense.NewDate(filter.Year, filter.Month+1, 1)
		conds = append(conds, fmt.Sprintf("date >= $%d::date AND date < $%d::date", argsPosition, argsPosition+1))
		args = append(args, from.String(), to.String())
		argsPosition += 2
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY date DESC, created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argsPosition)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]expense.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ExpensesRepo) Update(ctx context.Context, ownerID, id string, f expense.Fields) (expense.Expense, error) {
	row := r.pool.QueryRow(
		ctx,
		`UPDATE expenses
			SET amount = $3::numeric,
				category = $4,
				date = $5::date,
				note = $6,
				updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+expenseColumns,
		id,
		ownerID,
		f.Amount.String(),
		f.Category,
		f.Date.String(),
		f.Note,
	)

	e, err := scanExpense(row)
	if err != nil {
		// no row for this (id, owner) pair
		if errors.Is(err, pgx.ErrNoRows) {
			return expense.Expense{}, expense.ErrNotFound
		}
		return expense.Expense{}, err
	}
	return e, nil
}

func (r *ExpensesRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return expense.ErrNotFound
	}
	return nil
}

func scanExpense(row pgx.Row) (expense.Expense, error) {
	var (
		e      expense.Expense
		amount string
		date   string
	)

	err := row.Scan(&e.ID, &e.OwnerID, &amount, &e.Category, &date, &e.Note, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return expense.Expense{}, err
	}

	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return expense.Expense{}, fmt.Errorf("scan amount %q: %w", amount, err)
	}
	if e.Date, err = expense.ParseDate(date); err != nil {
		return expense.Expense{}, fmt.Errorf("scan date %q: %w", date, err)
	}
	return e, nil
}
