package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Schema creates the ledger tables. Balances are unconstrained NUMERIC so
// the compare-and-swap on balance never sees a rounded value.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	user_id         UUID PRIMARY KEY,
	name            VARCHAR(255) NOT NULL,
	balance         NUMERIC NOT NULL DEFAULT 0 CHECK (balance >= 0),
	opening_balance NUMERIC NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
	user_id        UUID NOT NULL REFERENCES accounts(user_id),
	transaction_id UUID NOT NULL,
	amount         NUMERIC NOT NULL CHECK (amount > 0),
	type           VARCHAR(6) NOT NULL CHECK (type IN ('debit', 'credit')),
	created_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, transaction_id)
);
`

// EnsureSchema applies Schema. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
