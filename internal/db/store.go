package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/expensehub/internal/config"
	"github.com/geocoder89/expensehub/internal/observability"
	"github.com/geocoder89/expensehub/internal/repo/memory"
	mongorepo "github.com/geocoder89/expensehub/internal/repo/mongo"
	"github.com/geocoder89/expensehub/internal/repo/postgres"
	"github.com/geocoder89/expensehub/internal/service"
)

// Store bundles the user and expense stores of one backend.
type Store struct {
	Backend  string
	Users    service.UserStore
	Expenses service.ExpenseStore

	ping  func(ctx context.Context) error
	close func()
}

// Ping reports whether the backing database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewMemoryStore returns a process-local store.
func NewMemoryStore() *Store {
	return &Store{
		Backend:  "memory",
		Users:    memory.NewUsersRepo(),
		Expenses: memory.NewExpensesRepo(),
	}
}

// Open connects to the backend selected by cfg.StoreURI, prepares its
// schema and wraps the repositories with query metrics. User lookups by id
// are cached in front of the metrics.
func Open(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (*Store, error) {
	var (
		s   *Store
		err error
	)

	switch backend := cfg.StoreBackend(); backend {
	case "mongo":
		s, err = openMongo(ctx, cfg)
	case "postgres":
		s, err = openPostgres(ctx, cfg)
	case "memory":
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported store uri scheme %q", cfg.StoreURI)
	}
	if err != nil {
		return nil, err
	}

	log.Info("store opened", "backend", s.Backend)

	s.Users = newCachedUsers(&instrumentedUsers{next: s.Users, prom: prom})
	s.Expenses = &instrumentedExpenses{next: s.Expenses, prom: prom}
	return s, nil
}

func openMongo(ctx context.Context, cfg config.Config) (*Store, error) {
	client, err := mongorepo.Connect(ctx, cfg.StoreURI)
	if err != nil {
		return nil, err
	}

	database := client.Database(cfg.MongoDatabase)
	if err := mongorepo.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{
		Backend:  "mongo",
		Users:    mongorepo.NewUsersRepo(database),
		Expenses: mongorepo.NewExpensesRepo(database),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: func() {
			_ = client.Disconnect(context.Background())
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config) (*Store, error) {
	pool, err := NewPool(ctx, cfg.StoreURI)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	if err := Migrate(pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{
		Backend:  "postgres",
		Users:    postgres.NewUsersRepo(pool),
		Expenses: postgres.NewExpensesRepo(pool),
		ping:     pool.Ping,
		close:    pool.Close,
	}, nil
}
