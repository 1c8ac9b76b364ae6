package services

//go:generate mockgen -source=ledger.go -destination=ledger_mock_test.go -package=services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// DefaultMaxAttempts bounds the read-compute-write sequence under store conflicts.
const DefaultMaxAttempts = 5

// AccountStore is the durable per-user balance storage.
type AccountStore interface {
	// Get returns the account or ErrAccountNotFound.
	Get(ctx context.Context, userID string) (*models.Account, error)
	// ConditionalUpdate swaps the balance from expected to newBalance, ErrStoreConflict on mismatch.
	ConditionalUpdate(ctx context.Context, userID string, expected, newBalance decimal.Decimal) error
	// Create inserts the account or returns ErrDuplicateAccount.
	Create(ctx context.Context, account models.Account) error
	// ScanAll returns every account.
	ScanAll(ctx context.Context) ([]models.Account, error)
}

// TransactionLog is the write-once transaction record storage.
type TransactionLog interface {
	// Get returns nil, nil when the record is absent.
	Get(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	// PutIfAbsent returns ErrTransactionExists when the key is taken.
	PutIfAbsent(ctx context.Context, txn models.Transaction) error
	// ListByUser returns the records of a user in creation order.
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
}

// Transactor runs fn as one unit of work against the stores.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionCache caches committed transaction records.
type TransactionCache interface {
	GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	SetTransaction(ctx context.Context, txn models.Transaction) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// LedgerService applies debit and credit transactions to account balances.
// A transaction id is applied at most once per user.
type LedgerService struct {
	accounts    AccountStore
	txnLog      TransactionLog
	transactor  Transactor
	cache       TransactionCache
	kafkaWriter KafkaWriter
	maxAttempts int
	now         func() time.Time
}

// NewLedgerService creates a new LedgerService. cache and kafkaWriter may be nil.
func NewLedgerService(
	accounts AccountStore,
	txnLog TransactionLog,
	transactor Transactor,
	cache TransactionCache,
	kafkaWriter KafkaWriter,
	maxAttempts int,
) *LedgerService {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &LedgerService{
		accounts:    accounts,
		txnLog:      txnLog,
		transactor:  transactor,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// ApplyTransaction validates req and applies it to the user's balance.
// A request whose transaction id was already recorded is answered from the
// record without any write.
func (s *LedgerService) ApplyTransaction(ctx context.Context, req models.TransactionRequest) (*models.TransactionResult, error) {
	txnType, err := models.ParseTransactionType(req.Type)
	if err != nil {
		return nil, err
	}
	amount, err := models.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, models.ErrMissingUserID
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	} else if _, err := uuid.Parse(transactionID); err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidTransactionID, transactionID)
	}

	txn := models.Transaction{
		UserID:        req.UserID,
		TransactionID: transactionID,
		Amount:        amount,
		Type:          txnType,
		CreatedAt:     s.now().UTC(),
	}

	if result, err := s.replay(ctx, txn); err != nil || result != nil {
		return result, err
	}

	attempt := 0
	op := func() error {
		attempt++
		err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
			return s.applyOnce(ctx, txn)
		})
		if errors.Is(err, models.ErrStoreConflict) {
			logger.Log.Warnw("balance changed concurrently, retrying", "userID", txn.UserID, "transaction_id", txn.TransactionID, "attempt", attempt)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	err = backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(newConflictBackOff(), uint64(s.maxAttempts-1)), ctx))
	switch {
	case err == nil:
	case errors.Is(err, models.ErrTransactionExists):
		// A concurrent request with the same id committed first.
		result, replayErr := s.replay(ctx, txn)
		if replayErr != nil {
			return nil, replayErr
		}
		if result != nil {
			return result, nil
		}
		return nil, err
	case errors.Is(err, models.ErrStoreConflict):
		logger.Log.Errorw("giving up after repeated conflicts", "userID", txn.UserID, "transaction_id", txn.TransactionID, "attempts", attempt)
		return nil, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
	default:
		logger.Log.Errorw("failed to apply transaction", "userID", txn.UserID, "transaction_id", txn.TransactionID, "error", err)
		return nil, err
	}

	s.cacheTransaction(ctx, txn)
	s.publishTransaction(ctx, txn)

	return &models.TransactionResult{
		TransactionID: txn.TransactionID,
		Type:          txn.Type,
	}, nil
}

// applyOnce reads the balance, checks funds, records txn and swaps the balance.
// It must run inside a unit of work so that the record and the balance commit together.
func (s *LedgerService) applyOnce(ctx context.Context, txn models.Transaction) error {
	account, err := s.accounts.Get(ctx, txn.UserID)
	if err != nil {
		return err
	}

	// The account read serializes writers of this user, so a record committed
	// after the replay check is visible here and wins over the funds check.
	existing, err := s.txnLog.Get(ctx, txn.UserID, txn.TransactionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s/%s", models.ErrTransactionExists, txn.UserID, txn.TransactionID)
	}

	newBalance, err := txn.Type.Apply(account.Balance, txn.Amount)
	if err != nil {
		return err
	}

	if err := s.txnLog.PutIfAbsent(ctx, txn); err != nil {
		return err
	}

	return s.accounts.ConditionalUpdate(ctx, txn.UserID, account.Balance, newBalance)
}

// replay looks txn up in the cache and then in the transaction log.
// It returns a nil result when the transaction has not been recorded.
func (s *LedgerService) replay(ctx context.Context, txn models.Transaction) (*models.TransactionResult, error) {
	existing := s.cachedTransaction(ctx, txn.UserID, txn.TransactionID)
	if existing == nil {
		var err error
		existing, err = s.txnLog.Get(ctx, txn.UserID, txn.TransactionID)
		if err != nil {
			logger.Log.Errorw("failed to check transaction log", "userID", txn.UserID, "transaction_id", txn.TransactionID, "error", err)
			return nil, err
		}
		if existing == nil {
			return nil, nil
		}
		s.cacheTransaction(ctx, *existing)
	}

	if !existing.Matches(txn) {
		return nil, fmt.Errorf("%w: %s", models.ErrIdempotencyMismatch, txn.TransactionID)
	}

	logger.Log.Infow("transaction already applied, skipping", "userID", txn.UserID, "transaction_id", txn.TransactionID)
	return &models.TransactionResult{
		TransactionID: existing.TransactionID,
		Type:          existing.Type,
		Replayed:      true,
	}, nil
}

func (s *LedgerService) cachedTransaction(ctx context.Context, userID, transactionID string) *models.Transaction {
	if s.cache == nil {
		return nil
	}
	txn, err := s.cache.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil
	}
	return txn
}

func (s *LedgerService) cacheTransaction(ctx context.Context, txn models.Transaction) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetTransaction(ctx, txn); err != nil {
		logger.Log.Errorw("failed to cache transaction", "transaction_id", txn.TransactionID, "error", err)
	}
}

// publishTransaction publishes an applied transaction to Kafka.
func (s *LedgerService) publishTransaction(ctx context.Context, txn models.Transaction) {
	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "transaction_id", txn.TransactionID)
		return
	}

	data, err := json.Marshal(txn)
	if err != nil {
		logger.Log.Errorw("Failed to marshal transaction for Kafka", "transaction_id", txn.TransactionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(txn.UserID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish transaction to Kafka", "transaction_id", txn.TransactionID, "error", err)
	} else {
		logger.Log.Infow("Transaction published to Kafka", "transaction_id", txn.TransactionID, "amount", txn.Amount)
	}
}

func newConflictBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}
