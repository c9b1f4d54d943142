package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tokenops/tokenledger/internal/ledger_service/domain"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx that repository methods
// use, so the same method can run inside or outside a transactional scope.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TransactionScope runs fn inside one storage transaction. Every write made
// through the Querier handed to fn commits or rolls back as a single unit.
type TransactionScope interface {
	WithinTransaction(ctx context.Context, fn func(q Querier) error) error
}

// AccountRepository defines persistence for token accounts.
type AccountRepository interface {
	Create(ctx context.Context, q Querier, account *domain.Account) (*domain.Account, error)
	GetByUserID(ctx context.Context, q Querier, userID string) (*domain.Account, error)
	// IncrementBalance adds amount to the balance unconditionally and stamps
	// last_updated, returning the new balance. Fails with
	// domain.ErrAccountNotFound when no row matches.
	IncrementBalance(ctx context.Context, q Querier, userID string, amount int64, at time.Time) (int64, error)
	// DecrementIfSufficient subtracts amount only when balance >= amount, as a
	// single conditional update, returning the new balance. Fails with
	// domain.ErrAccountNotFound or domain.ErrInsufficientBalance.
	DecrementIfSufficient(ctx context.Context, q Querier, userID string, amount int64, at time.Time) (int64, error)
}

// TransactionRepository defines persistence for the append-only history.
type TransactionRepository interface {
	Create(ctx context.Context, q Querier, txn *domain.Transaction) (*domain.Transaction, error)
	// ListByUserID returns up to limit entries, most recent first.
	ListByUserID(ctx context.Context, q Querier, userID string, limit int) ([]domain.Transaction, error)
}
