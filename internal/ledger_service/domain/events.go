package domain

import "time"

const (
	NATSTransactionRecordedV1 = "ledger.transaction.recorded.v1"
)

// TransactionRecordedEvent is published after a balance mutation commits.
// Delivery is best effort; the ledger state is the source of truth.
type TransactionRecordedEvent struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceAfter  *int64          `json:"balance_after,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}
