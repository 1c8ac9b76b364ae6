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
)

// TransactionRepository is the PostgreSQL transaction log.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Get returns the record stored under (userID, transactionID), or nil if there is none.
func (r *TransactionRepository) Get(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}

	const query = `
		SELECT user_id, transaction_id, amount, type, created_at
		FROM transactions
		WHERE user_id = $1 AND transaction_id = $2
	`

	var txn models.Transaction
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &txn, query, userID, transactionID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, transactionID},
		"result", txn.TransactionID,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get transaction", err)
	}
	return &txn, nil
}

// PutIfAbsent writes txn once. A second write under the same key returns
// models.ErrTransactionExists and leaves the stored record untouched.
func (r *TransactionRepository) PutIfAbsent(ctx context.Context, txn models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, transaction_id, amount, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, transaction_id) DO NOTHING
	`
	args := []any{txn.UserID, txn.TransactionID, txn.Amount, string(txn.Type), txn.CreatedAt}

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
		return storeErr("put transaction", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s/%s", models.ErrTransactionExists, txn.UserID, txn.TransactionID)
	}
	return nil
}

// ListByUser returns all records of userID in creation order.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	const query = `
		SELECT user_id, transaction_id, amount, type, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at, transaction_id
	`

	txns := []models.Transaction{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db), &txns, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(txns),
		"error", err,
	)

	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	return txns, nil
}
