package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountTierValid(t *testing.T) {
	assert.True(t, TierBasic.Valid())
	assert.True(t, TierPremium.Valid())
	assert.True(t, TierEnterprise.Valid())
	assert.False(t, AccountTier("").Valid())
	assert.False(t, AccountTier("GOLD").Valid())
	assert.False(t, AccountTier("basic").Valid())
}

func TestNewAccountDefaultsToBasicTier(t *testing.T) {
	account := NewAccount("u1", 100, "")
	assert.Equal(t, TierBasic, account.Tier)
	assert.Equal(t, "u1", account.UserID)
	assert.Equal(t, int64(100), account.Balance)
	assert.Empty(t, account.ID) // assigned at insert time
}

func TestNewAccountKeepsExplicitTier(t *testing.T) {
	account := NewAccount("u2", 0, TierEnterprise)
	assert.Equal(t, TierEnterprise, account.Tier)
}
