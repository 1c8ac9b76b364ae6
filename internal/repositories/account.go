package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// AccountRepository stores accounts in PostgreSQL.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Get returns the account for userID or models.ErrAccountNotFound.
// Inside a transaction the row is locked until commit.
func (r *AccountRepository) Get(ctx context.Context, userID string) (*models.Account, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, userID)
	}

	query := `
		SELECT user_id, name, COALESCE(balance, 0) AS balance, opening_balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	if GetTxFromContext(ctx) != nil {
		query += " FOR UPDATE"
	}

	var account models.Account
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &account, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", account.Balance,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, userID)
		}
		return nil, storeErr("get account", err)
	}
	return &account, nil
}

// ConditionalUpdate sets the balance to newBalance only if it still equals expected.
// Returns models.ErrStoreConflict when the balance moved and models.ErrAccountNotFound
// when the account does not exist.
func (r *AccountRepository) ConditionalUpdate(ctx context.Context, userID string, expected, newBalance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $3, updated_at = NOW()
		WHERE user_id = $1 AND balance = $2
	`
	args := []any{userID, expected, newBalance}

	exec := executor(ctx, r.db)
	res, err := exec.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if err == nil {
		rowsAffected, err = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return storeErr("update balance", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, exec, &exists, `SELECT EXISTS (SELECT 1 FROM accounts WHERE user_id = $1)`, userID); err != nil {
		return storeErr("check account", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", models.ErrAccountNotFound, userID)
	}
	return fmt.Errorf("%w: balance of %s is no longer %s", models.ErrStoreConflict, userID, expected)
}

// Create inserts account unless an account with the same id exists,
// in which case models.ErrDuplicateAccount is returned.
func (r *AccountRepository) Create(ctx context.Context, account models.Account) error {
	query := `
		INSERT INTO accounts (user_id, name, balance, opening_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	args := []any{account.UserID, account.Name, account.Balance, account.OpeningBalance}

	res, err := executor(ctx, r.db).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if err == nil {
		rowsAffected, err = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return storeErr("create account", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrDuplicateAccount, account.UserID)
	}
	return nil
}

// ScanAll returns every account ordered by creation time.
func (r *AccountRepository) ScanAll(ctx context.Context) ([]models.Account, error) {
	const query = `
		SELECT user_id, name, COALESCE(balance, 0) AS balance, opening_balance, created_at, updated_at
		FROM accounts
		ORDER BY created_at, user_id
	`

	accounts := []models.Account{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db), &accounts, query)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{},
		"result", len(accounts),
		"error", err,
	)

	if err != nil {
		return nil, storeErr("scan accounts", err)
	}
	return accounts, nil
}
