package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a balance change.
type TransactionType string

// Supported transaction types
const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

// ParseTransactionType validates a raw type value. Matching is exact.
func ParseTransactionType(raw string) (TransactionType, error) {
	switch TransactionType(raw) {
	case Debit, Credit:
		return TransactionType(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, raw)
	}
}

// Apply returns the balance after applying amount in this direction.
// A debit that would leave the balance below zero fails with ErrInsufficientFunds.
func (t TransactionType) Apply(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case Debit:
		next := balance.Sub(amount)
		if next.IsNegative() {
			return balance, fmt.Errorf("%w: balance %s, debit %s", ErrInsufficientFunds, balance, amount)
		}
		return next, nil
	case Credit:
		return balance.Add(amount), nil
	default:
		return balance, fmt.Errorf("%w: %q", ErrInvalidTransactionType, string(t))
	}
}

// ParseAmount parses a raw amount as sent by a caller.
// Empty input is ErrMissingAmount; anything that is not a finite number > 0 is ErrInvalidAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrMissingAmount
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a finite number", ErrInvalidAmount, raw)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a finite number", ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount)
	}

	return amount, nil
}

// Transaction is a write-once ledger record. Its presence under
// (UserID, TransactionID) marks the transaction as applied.
type Transaction struct {
	UserID        string          `json:"userId" db:"user_id"`               // Owner of the affected account
	TransactionID string          `json:"transactionId" db:"transaction_id"` // Idempotency key, unique per user
	Amount        decimal.Decimal `json:"amount" db:"amount"`                // Always positive
	Type          TransactionType `json:"type" db:"type"`                    // debit or credit
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`         // When the record was built
}

// Matches reports whether other describes the same logical operation.
func (t Transaction) Matches(other Transaction) bool {
	return t.UserID == other.UserID &&
		t.TransactionID == other.TransactionID &&
		t.Type == other.Type &&
		t.Amount.Equal(other.Amount)
}

// TransactionRequest is the caller's intent. Amount is kept raw so that
// validation can tell a missing amount from a malformed one.
type TransactionRequest struct {
	UserID        string
	Amount        string
	Type          string
	TransactionID string // optional idempotency key supplied by the caller
}

// TransactionResult is returned for an applied or replayed transaction.
type TransactionResult struct {
	TransactionID string
	Type          TransactionType
	Replayed      bool // true when the transaction had already been applied
}
