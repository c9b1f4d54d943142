package domain

import "time"

// TransactionType defines the nature of a balance mutation.
type TransactionType string

const (
	TransactionTypeDeduct TransactionType = "DEDUCT"
	TransactionTypeCredit TransactionType = "CREDIT"
	// TransactionTypeAdminAdjustment is reserved; administrative flows reuse
	// the credit/deduct machinery and there is no dedicated operation for it.
	TransactionTypeAdminAdjustment TransactionType = "ADMIN_ADJUSTMENT"
)

// Transaction is one immutable entry in a user's balance history. Rows are
// append-only: they are written exactly once, atomically with the balance
// update they describe, and never mutated or deleted.
type Transaction struct {
	ID           string            `json:"id"`      // UUID
	UserID       string            `json:"user_id"` // Not a foreign key; the store is schemaless on this edge
	Amount       int64             `json:"amount"`  // Negative for deductions, positive for credits
	Type         TransactionType   `json:"type"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`      // Stored as JSONB
	BalanceAfter *int64            `json:"balance_after,omitempty"` // Account balance after this entry committed
	Timestamp    time.Time         `json:"timestamp"`
}
