package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

type txnKey struct {
	userID        string
	transactionID string
}

// MemoryStore is an in-process account store and transaction log.
// Units of work run one at a time and their writes stay staged until commit.
type MemoryStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	accounts map[string]models.Account
	txns     map[txnKey]models.Transaction
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]models.Account),
		txns:     make(map[txnKey]models.Transaction),
		now:      time.Now,
	}
}

// Accounts returns the account store view.
func (s *MemoryStore) Accounts() *MemoryAccountRepository {
	return &MemoryAccountRepository{s: s}
}

// Transactions returns the transaction log view.
func (s *MemoryStore) Transactions() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{s: s}
}

type balanceUpdate struct {
	expected decimal.Decimal
	balance  decimal.Decimal
}

// memTx holds the writes of an open unit of work.
type memTx struct {
	updates map[string]balanceUpdate
	txns    map[txnKey]models.Transaction
}

type memTxKey struct{}

func memTxFromContext(ctx context.Context) *memTx {
	tx, _ := ctx.Value(memTxKey{}).(*memTx)
	return tx
}

// WithinTx runs fn as a unit of work. Staged writes are validated again
// and applied atomically when fn returns nil; otherwise they are dropped.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if memTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{
		updates: make(map[string]balanceUpdate),
		txns:    make(map[txnKey]models.Transaction),
	}
	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *MemoryStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range tx.txns {
		if _, ok := s.txns[k]; ok {
			return fmt.Errorf("%w: %s/%s", models.ErrTransactionExists, k.userID, k.transactionID)
		}
	}
	for userID, u := range tx.updates {
		acc, ok := s.accounts[userID]
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrAccountNotFound, userID)
		}
		if !acc.Balance.Equal(u.expected) {
			return fmt.Errorf("%w: balance of %s is no longer %s", models.ErrStoreConflict, userID, u.expected)
		}
	}

	for k, txn := range tx.txns {
		s.txns[k] = txn
	}
	now := s.now().UTC()
	for userID, u := range tx.updates {
		acc := s.accounts[userID]
		acc.Balance = u.balance
		acc.UpdatedAt = now
		s.accounts[userID] = acc
	}
	return nil
}

// MemoryAccountRepository is the account store view of a MemoryStore.
type MemoryAccountRepository struct {
	s *MemoryStore
}

// Get returns the account, including balance changes staged in the current unit of work.
func (r *MemoryAccountRepository) Get(ctx context.Context, userID string) (*models.Account, error) {
	r.s.mu.Lock()
	acc, ok := r.s.accounts[userID]
	r.s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, userID)
	}

	if tx := memTxFromContext(ctx); tx != nil {
		if u, ok := tx.updates[userID]; ok {
			acc.Balance = u.balance
		}
	}
	return &acc, nil
}

// ConditionalUpdate sets the balance to newBalance if it currently equals expected.
func (r *MemoryAccountRepository) ConditionalUpdate(ctx context.Context, userID string, expected, newBalance decimal.Decimal) error {
	if tx := memTxFromContext(ctx); tx != nil {
		current, err := r.Get(ctx, userID)
		if err != nil {
			return err
		}
		if !current.Balance.Equal(expected) {
			return fmt.Errorf("%w: balance of %s is no longer %s", models.ErrStoreConflict, userID, expected)
		}
		u, staged := tx.updates[userID]
		if !staged {
			u.expected = expected
		}
		u.balance = newBalance
		tx.updates[userID] = u
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	acc, ok := r.s.accounts[userID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrAccountNotFound, userID)
	}
	if !acc.Balance.Equal(expected) {
		return fmt.Errorf("%w: balance of %s is no longer %s", models.ErrStoreConflict, userID, expected)
	}
	acc.Balance = newBalance
	acc.UpdatedAt = r.s.now().UTC()
	r.s.accounts[userID] = acc
	return nil
}

// Create inserts account or returns models.ErrDuplicateAccount.
func (r *MemoryAccountRepository) Create(ctx context.Context, account models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[account.UserID]; ok {
		return fmt.Errorf("%w: %s", models.ErrDuplicateAccount, account.UserID)
	}
	now := r.s.now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.accounts[account.UserID] = account
	return nil
}

// ScanAll returns a snapshot of every account ordered by creation time.
func (r *MemoryAccountRepository) ScanAll(ctx context.Context) ([]models.Account, error) {
	r.s.mu.Lock()
	accounts := make([]models.Account, 0, len(r.s.accounts))
	for _, acc := range r.s.accounts {
		accounts = append(accounts, acc)
	}
	r.s.mu.Unlock()

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].UserID < accounts[j].UserID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// MemoryTransactionRepository is the transaction log view of a MemoryStore.
type MemoryTransactionRepository struct {
	s *MemoryStore
}

// Get returns the record or nil when it does not exist.
func (r *MemoryTransactionRepository) Get(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	k := txnKey{userID: userID, transactionID: transactionID}

	if tx := memTxFromContext(ctx); tx != nil {
		if txn, ok := tx.txns[k]; ok {
			return &txn, nil
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	txn, ok := r.s.txns[k]
	if !ok {
		return nil, nil
	}
	return &txn, nil
}

// PutIfAbsent stores txn unless the key is taken.
func (r *MemoryTransactionRepository) PutIfAbsent(ctx context.Context, txn models.Transaction) error {
	existing, err := r.Get(ctx, txn.UserID, txn.TransactionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s/%s", models.ErrTransactionExists, txn.UserID, txn.TransactionID)
	}

	k := txnKey{userID: txn.UserID, transactionID: txn.TransactionID}
	if tx := memTxFromContext(ctx); tx != nil {
		tx.txns[k] = txn
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.txns[k]; ok {
		return fmt.Errorf("%w: %s/%s", models.ErrTransactionExists, txn.UserID, txn.TransactionID)
	}
	r.s.txns[k] = txn
	return nil
}

// ListByUser returns the records of userID in creation order.
func (r *MemoryTransactionRepository) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	r.s.mu.Lock()
	txns := []models.Transaction{}
	for k, txn := range r.s.txns {
		if k.userID == userID {
			txns = append(txns, txn)
		}
	}
	r.s.mu.Unlock()

	sort.Slice(txns, func(i, j int) bool {
		if txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].TransactionID < txns[j].TransactionID
		}
		return txns[i].CreatedAt.Before(txns[j].CreatedAt)
	})
	return txns, nil
}
