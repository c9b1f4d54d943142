package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tokenops/tokenledger/internal/ledger_service/domain"
	"github.com/tokenops/tokenledger/internal/ledger_service/repository"
)

const (
	// DefaultHistoryLimit is used when GetTransactionHistory gets limit <= 0.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a single history page.
	MaxHistoryLimit = 500

	maxTxAttempts  = 3
	txRetryBackoff = 25 * time.Millisecond
)

// EventPublisher publishes ledger events. *messagebroker.NatsClient satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// LedgerService owns account lifecycle and balance-mutating operations.
// It holds no in-process state between calls; the store's transactional
// guarantees are the only concurrency-safety mechanism.
type LedgerService struct {
	db              repository.Querier // pool handle for single-statement operations
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	txScope         repository.TransactionScope
	publisher       EventPublisher // optional; nil disables event publishing
	logger          *slog.Logger
}

// NewLedgerService creates a LedgerService. publisher may be nil.
func NewLedgerService(
	db repository.Querier,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	txScope repository.TransactionScope,
	publisher EventPublisher,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txScope:         txScope,
		publisher:       publisher,
		logger:          logger.With("service", "ledger"),
	}
}

// CreateAccount creates a token account for userID, or returns the existing
// one unchanged. A uniqueness violation from a concurrent create is recovered
// by re-reading the winner's row, never surfaced.
func (s *LedgerService) CreateAccount(ctx context.Context, userID string, initialBalance int64, tier domain.AccountTier) (*domain.Account, error) {
	if userID == "" {
		return nil, errors.New("user id must not be empty")
	}
	if tier != "" && !tier.Valid() {
		return nil, fmt.Errorf("unknown account tier %q", tier)
	}

	existing, err := s.accountRepo.GetByUserID(ctx, s.db, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	created, err := s.accountRepo.Create(ctx, s.db, domain.NewAccount(userID, initialBalance, tier))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			// Lost the creation race; the other writer's account is the one.
			s.logger.InfoContext(ctx, "Account creation raced, returning existing account", "user_id", userID)
			return s.accountRepo.GetByUserID(ctx, s.db, userID)
		}
		s.logger.ErrorContext(ctx, "Failed to create account", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	accountsCreatedCounter.Inc()
	s.logger.InfoContext(ctx, "Account created", "user_id", userID, "account_id", created.ID, "balance", created.Balance, "tier", created.Tier)
	return created, nil
}

// GetAccount returns the full account record for userID.
func (s *LedgerService) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	return s.accountRepo.GetByUserID(ctx, s.db, userID)
}

// GetBalance returns the current balance for userID.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (int64, error) {
	account, err := s.accountRepo.GetByUserID(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// DeductTokens subtracts amount from the balance and appends a DEDUCT entry
// with amount = -amount, both in one storage transaction. Sufficiency is
// validated by the conditional update inside that transaction, so racing
// deductions can never drive the balance negative.
func (s *LedgerService) DeductTokens(ctx context.Context, userID string, amount int64, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		mutationsRejectedCounter.WithLabelValues("invalid_amount").Inc()
		return nil, domain.ErrInvalidAmount
	}
	return s.applyMutation(ctx, userID, -amount, domain.TransactionTypeDeduct, description)
}

// CreditTokens adds amount to the balance and appends a CREDIT entry with
// amount = +amount, both in one storage transaction. There is no upper bound.
func (s *LedgerService) CreditTokens(ctx context.Context, userID string, amount int64, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		mutationsRejectedCounter.WithLabelValues("invalid_amount").Inc()
		return nil, domain.ErrInvalidAmount
	}
	return s.applyMutation(ctx, userID, amount, domain.TransactionTypeCredit, description)
}

// GetTransactionHistory returns up to limit entries for userID, most recent
// first. Unknown users get an empty page, not an error.
func (s *LedgerService) GetTransactionHistory(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	transactions, err := s.transactionRepo.ListByUserID(ctx, s.db, userID, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list transactions", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	return transactions, nil
}

// applyMutation runs the balance update and the history insert as one atomic
// unit. signedAmount is negative for deductions, positive for credits.
func (s *LedgerService) applyMutation(ctx context.Context, userID string, signedAmount int64, txnType domain.TransactionType, description string) (*domain.Transaction, error) {
	var recorded *domain.Transaction

	err := s.withConflictRetry(ctx, func() error {
		recorded = nil
		return s.txScope.WithinTransaction(ctx, func(q repository.Querier) error {
			now := time.Now().UTC()

			var newBalance int64
			var err error
			if signedAmount < 0 {
				newBalance, err = s.accountRepo.DecrementIfSufficient(ctx, q, userID, -signedAmount, now)
			} else {
				newBalance, err = s.accountRepo.IncrementBalance(ctx, q, userID, signedAmount, now)
			}
			if err != nil {
				return err
			}

			recorded, err = s.transactionRepo.Create(ctx, q, &domain.Transaction{
				UserID:       userID,
				Amount:       signedAmount,
				Type:         txnType,
				Description:  description,
				BalanceAfter: &newBalance,
				Timestamp:    now,
			})
			return err
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			mutationsRejectedCounter.WithLabelValues("account_not_found").Inc()
			return nil, err
		case errors.Is(err, domain.ErrInsufficientBalance):
			mutationsRejectedCounter.WithLabelValues("insufficient_balance").Inc()
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Ledger mutation failed", "error", err, "user_id", userID, "type", txnType, "amount", signedAmount)
		return nil, fmt.Errorf("ledger mutation failed: %w", err)
	}

	transactionsRecordedCounter.WithLabelValues(string(txnType)).Inc()
	s.logger.InfoContext(ctx, "Transaction recorded", "user_id", userID, "transaction_id", recorded.ID, "type", txnType, "amount", signedAmount, "balance_after", *recorded.BalanceAfter)

	s.publishTransactionRecorded(ctx, recorded)
	return recorded, nil
}

// withConflictRetry re-runs op on transient transaction conflicts from the
// store (serialization failure, deadlock). Domain errors pass through.
func (s *LedgerService) withConflictRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || !isTransientConflict(err) || attempt == maxTxAttempts {
			return err
		}
		s.logger.WarnContext(ctx, "Transient storage conflict, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(txRetryBackoff * time.Duration(attempt)):
		}
	}
}

func isTransientConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// 40001 serialization_failure, 40P01 deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// publishTransactionRecorded is best effort: the committed ledger state is
// authoritative and a publish failure must not fail the operation.
func (s *LedgerService) publishTransactionRecorded(ctx context.Context, txn *domain.Transaction) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(domain.TransactionRecordedEvent{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Type:          txn.Type,
		Amount:        txn.Amount,
		BalanceAfter:  txn.BalanceAfter,
		Timestamp:     txn.Timestamp,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal transaction recorded event", "error", err, "transaction_id", txn.ID)
		return
	}

	if err := s.publisher.Publish(ctx, domain.NATSTransactionRecordedV1, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction recorded event", "error", err, "transaction_id", txn.ID)
	}
}
