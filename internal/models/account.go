package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBalance is credited to every new account.
var OpeningBalance = decimal.NewFromInt(100)

// Account represents an account row in the database
type Account struct {
	UserID         string          `json:"userId" db:"user_id"`                 // Primary key
	Name           string          `json:"name" db:"name"`                      // Display name
	Balance        decimal.Decimal `json:"balance" db:"balance"`                // Current balance, never negative
	OpeningBalance decimal.Decimal `json:"openingBalance" db:"opening_balance"` // Balance at creation
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`           // Creation timestamp
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`           // Last balance change
}
