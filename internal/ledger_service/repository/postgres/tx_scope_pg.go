package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokenops/tokenledger/internal/ledger_service/repository"
)

type pgTransactionScope struct {
	pool *pgxpool.Pool
}

// NewPgTransactionScope wraps a pgx pool as a repository.TransactionScope.
func NewPgTransactionScope(pool *pgxpool.Pool) repository.TransactionScope {
	return &pgTransactionScope{pool: pool}
}

func (s *pgTransactionScope) WithinTransaction(ctx context.Context, fn func(q repository.Querier) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}
