package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// ErrCacheMiss is returned when a record is not cached.
var ErrCacheMiss = errors.New("transaction not found in cache")

// TransactionCacheRepository caches committed transaction records in Redis.
// Records are immutable, so entries never need invalidation; only the TTL bounds memory.
type TransactionCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached records
}

// NewTransactionCacheRepository creates a new repository instance with optional TTL
func NewTransactionCacheRepository(client *redis.Client, expiration time.Duration) *TransactionCacheRepository {
	return &TransactionCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func transactionKey(userID, transactionID string) string {
	return fmt.Sprintf("ledger:txn:%s:%s", userID, transactionID)
}

// GetTransaction returns a cached record or ErrCacheMiss.
func (r *TransactionCacheRepository) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	key := transactionKey(userID, transactionID)

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", nil,
			"error", err,
		)
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var txn models.Transaction
	if err := json.Unmarshal(val, &txn); err != nil {
		logger.Log.Infow(
			"key", key,
			"value", string(val),
			"result", nil,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", txn.TransactionID,
		"error", nil,
	)

	return &txn, nil
}

// SetTransaction caches a committed record. Never call it for a record that
// has not been committed to the transaction log.
func (r *TransactionCacheRepository) SetTransaction(ctx context.Context, txn models.Transaction) error {
	key := transactionKey(txn.UserID, txn.TransactionID)

	data, err := json.Marshal(txn)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}
