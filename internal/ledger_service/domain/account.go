package domain

import "time"

// AccountTier classifies an account's service level. It is stored and
// reported but not interpreted by the ledger itself.
type AccountTier string

const (
	TierBasic      AccountTier = "BASIC"
	TierPremium    AccountTier = "PREMIUM"
	TierEnterprise AccountTier = "ENTERPRISE"
)

// Valid reports whether t is one of the known tiers.
func (t AccountTier) Valid() bool {
	switch t {
	case TierBasic, TierPremium, TierEnterprise:
		return true
	}
	return false
}

// Account is the per-user balance record. There is at most one account per
// user id, enforced by a unique constraint on user_id. The balance is a
// whole token count; debits may never drive it negative.
type Account struct {
	ID          string            `json:"id"` // UUID
	UserID      string            `json:"user_id"`
	Balance     int64             `json:"balance"`
	Tier        AccountTier       `json:"tier"`
	Metadata    map[string]string `json:"metadata,omitempty"` // Stored as JSONB
	CreatedAt   time.Time         `json:"created_at"`
	LastUpdated time.Time         `json:"last_updated"`
}

// NewAccount builds an unsaved account with the given opening balance.
// An empty tier defaults to BASIC.
func NewAccount(userID string, initialBalance int64, tier AccountTier) *Account {
	if tier == "" {
		tier = TierBasic
	}
	return &Account{
		UserID:  userID,
		Balance: initialBalance,
		Tier:    tier,
	}
}
