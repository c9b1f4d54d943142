package domain

import "errors"

var (
	// ErrAccountNotFound indicates that no account exists for the user id.
	ErrAccountNotFound = errors.New("token account not found")
	// ErrInsufficientBalance indicates a deduction larger than the current balance.
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrDuplicateAccount indicates a unique constraint violation on user_id.
	ErrDuplicateAccount = errors.New("token account already exists")
	// ErrInvalidAmount indicates a non-positive mutation amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)
