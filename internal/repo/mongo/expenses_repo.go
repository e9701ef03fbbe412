package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// dates are stored as YYYY-MM-DD strings, which sort and range-compare
// lexicographically in calendar order
type expenseDoc struct {
	ID        string               `bson:"_id"`
	UserID    string               `bson:"userId"`
	Amount    primitive.Decimal128 `bson:"amount"`
	Category  string               `bson:"category"`
	Date      string               `bson:"date"`
	Note      string               `bson:"note,omitempty"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func toDoc(e expense.Expense) (expenseDoc, error) {
	amount, err := primitive.ParseDecimal128(e.Amount.String())
	if err != nil {
		return expenseDoc{}, fmt.Errorf("encode amount: %w", err)
	}
	return expenseDoc{
		ID:        e.ID,
		UserID:    e.OwnerID,
		Amount:    amount,
		Category:  e.Category,
		Date:      e.Date.String(),
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}, nil
}

func (d expenseDoc) toDomain() (expense.Expense, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return expense.Expense{}, fmt.Errorf("decode amount %q: %w", d.Amount.String(), err)
	}
	date, err := expense.ParseDate(d.Date)
	if err != nil {
		return expense.Expense{}, fmt.Errorf("decode date: %w", err)
	}
	return expense.Expense{
		ID:        d.ID,
		OwnerID:   d.UserID,
		Amount:    amount,
		Category:  d.Category,
		Date:      date,
		Note:      d.Note,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type ExpensesRepo struct {
	coll *mongo.Collection
}

func NewExpensesRepo(db *mongo.Database) *ExpensesRepo {
	return &ExpensesRepo{coll: db.Collection(expensesCollection)}
}

func (r *ExpensesRepo) Create(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	// BSON datetimes carry millisecond precision
	e.CreatedAt = e.CreatedAt.Truncate(time.Millisecond)
	e.UpdatedAt = e.UpdatedAt.Truncate(time.Millisecond)

	doc, err := toDoc(e)
	if err != nil {
		return expense.Expense{}, err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return expense.Expense{}, err
	}
	return e, nil
}

func (r *ExpensesRepo) List(ctx context.Context, ownerID string, filter expense.ListFilter) ([]expense.Expense, error) {
	query := bson.M{"userId": ownerID}

	if filter.HasMonth() {
		query["date"] = primitive.Regex{Pattern: monthPattern(filter.Year, filter.Month)}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: -1},
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]expense.Expense, 0)
	for cur.Next(ctx) {
		var doc expenseDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		e, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// monthPattern matches stored dates by their "YYYY-MM-" prefix, so
// December 9999 needs no upper bound.
func monthPattern(year int, month time.Month) string {
	return fmt.Sprintf("^%04d-%02d-", year, int(month))
}

func (r *ExpensesRepo) Update(ctx context.Context, ownerID, id string, f expense.Fields) (expense.Expense, error) {
	amount, err := primitive.ParseDecimal128(f.Amount.String())
	if err != nil {
		return expense.Expense{}, fmt.Errorf("encode amount: %w", err)
	}

	set := bson.M{
		"amount":    amount,
		"category":  f.Category,
		"date":      f.Date.String(),
		"note":      f.Note,
		"updatedAt": time.Now().UTC().Truncate(time.Millisecond),
	}

	// single-document update: concurrent writers serialize, last one wins
	var doc expenseDoc
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "userId": ownerID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return expense.Expense{}, expense.ErrNotFound
		}
		return expense.Expense{}, err
	}
	return doc.toDomain()
}

func (r *ExpensesRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "userId": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return expense.ErrNotFound
	}
	return nil
}
