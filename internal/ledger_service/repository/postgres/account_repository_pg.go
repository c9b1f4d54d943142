package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tokenops/tokenledger/internal/ledger_service/domain"
	"github.com/tokenops/tokenledger/internal/ledger_service/repository"
)

const pgUniqueViolation = "23505"

type pgAccountRepository struct{}

// NewPgAccountRepository creates the PostgreSQL AccountRepository.
func NewPgAccountRepository() repository.AccountRepository {
	return &pgAccountRepository{}
}

func (r *pgAccountRepository) Create(ctx context.Context, q repository.Querier, account *domain.Account) (*domain.Account, error) {
	account.ID = uuid.NewString()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.LastUpdated = now
	if account.Tier == "" {
		account.Tier = domain.TierBasic
	}

	query := `
		INSERT INTO token_accounts (id, user_id, balance, tier, metadata, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query,
		account.ID, account.UserID, account.Balance, account.Tier, account.Metadata,
		account.CreatedAt, account.LastUpdated,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, err
	}
	return account, nil
}

func (r *pgAccountRepository) GetByUserID(ctx context.Context, q repository.Querier, userID string) (*domain.Account, error) {
	account := &domain.Account{}
	query := `
		SELECT id, user_id, balance, tier, metadata, created_at, last_updated
		FROM token_accounts WHERE user_id = $1
	`
	err := q.QueryRow(ctx, query, userID).Scan(
		&account.ID, &account.UserID, &account.Balance, &account.Tier, &account.Metadata,
		&account.CreatedAt, &account.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *pgAccountRepository) IncrementBalance(ctx context.Context, q repository.Querier, userID string, amount int64, at time.Time) (int64, error) {
	query := `
		UPDATE token_accounts
		SET balance = balance + $2, last_updated = $3
		WHERE user_id = $1
		RETURNING balance
	`
	var newBalance int64
	err := q.QueryRow(ctx, query, userID, amount, at).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, err
	}
	return newBalance, nil
}

func (r *pgAccountRepository) DecrementIfSufficient(ctx context.Context, q repository.Querier, userID string, amount int64, at time.Time) (int64, error) {
	// Sufficiency is enforced by the WHERE clause, never by a prior read:
	// racing debits serialize on the row and the loser matches zero rows.
	query := `
		UPDATE token_accounts
		SET balance = balance - $2, last_updated = $3
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance
	`
	var newBalance int64
	err := q.QueryRow(ctx, query, userID, amount, at).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows covers both a missing account and an insufficient
			// balance; a re-read inside the same transaction disambiguates.
			if _, getErr := r.GetByUserID(ctx, q, userID); getErr != nil {
				return 0, getErr
			}
			return 0, domain.ErrInsufficientBalance
		}
		return 0, err
	}
	return newBalance, nil
}
