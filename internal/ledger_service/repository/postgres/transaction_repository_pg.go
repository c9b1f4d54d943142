package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tokenops/tokenledger/internal/ledger_service/domain"
	"github.com/tokenops/tokenledger/internal/ledger_service/repository"
)

type pgTransactionRepository struct{}

// NewPgTransactionRepository creates the PostgreSQL TransactionRepository.
func NewPgTransactionRepository() repository.TransactionRepository {
	return &pgTransactionRepository{}
}

func (r *pgTransactionRepository) Create(ctx context.Context, q repository.Querier, txn *domain.Transaction) (*domain.Transaction, error) {
	txn.ID = uuid.NewString()
	if txn.Timestamp.IsZero() {
		txn.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO token_transactions (id, user_id, amount, type, description, metadata, balance_after, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.Exec(ctx, query,
		txn.ID, txn.UserID, txn.Amount, txn.Type, txn.Description, txn.Metadata,
		txn.BalanceAfter, txn.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *pgTransactionRepository) ListByUserID(ctx context.Context, q repository.Querier, userID string, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, description, metadata, balance_after, "timestamp"
		FROM token_transactions
		WHERE user_id = $1
		ORDER BY "timestamp" DESC
		LIMIT $2
	`
	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		err := rows.Scan(
			&txn.ID, &txn.UserID, &txn.Amount, &txn.Type, &txn.Description, &txn.Metadata,
			&txn.BalanceAfter, &txn.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}
