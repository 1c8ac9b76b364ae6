package models

import "errors"

// Validation errors. Detected before any write.
var (
	ErrInvalidTransactionType = errors.New("invalid transaction type, must be 'debit' or 'credit'")
	ErrMissingAmount          = errors.New("amount is required")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidTransactionID   = errors.New("transaction id must be a UUID")
	ErrMissingName            = errors.New("name is required")
	ErrMissingUserID          = errors.New("user id is required")
)

// Ledger errors.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountNotFound     = errors.New("account not found")
	ErrDuplicateAccount    = errors.New("account already exists")
	ErrIdempotencyMismatch = errors.New("transaction id already used with different parameters")
)

// Store errors.
var (
	// ErrStoreUnavailable wraps any failure of the underlying store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreConflict is returned when a conditional update lost a race.
	ErrStoreConflict = errors.New("store conflict")
	// ErrTransactionExists is returned by PutIfAbsent when the key is taken.
	ErrTransactionExists = errors.New("transaction already recorded")
)
