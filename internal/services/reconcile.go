package services

import (
	"context"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Discrepancy describes an account whose balance does not match its history.
type Discrepancy struct {
	UserID   string
	Stored   decimal.Decimal
	Expected decimal.Decimal
	Records  int
}

// Reconciler checks every balance against its opening balance plus the
// recorded transactions.
type Reconciler struct {
	accounts   AccountStore
	txnLog     TransactionLog
	transactor Transactor
}

// NewReconciler creates a new Reconciler.
func NewReconciler(accounts AccountStore, txnLog TransactionLog, transactor Transactor) *Reconciler {
	return &Reconciler{accounts: accounts, txnLog: txnLog, transactor: transactor}
}

// Reconcile returns the accounts whose stored balance differs from the
// balance implied by their transaction records.
func (r *Reconciler) Reconcile(ctx context.Context) ([]Discrepancy, error) {
	accounts, err := r.accounts.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []Discrepancy
	for _, scanned := range accounts {
		d, err := r.reconcileAccount(ctx, scanned.UserID)
		if err != nil {
			return nil, err
		}
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// reconcileAccount compares one account with its records. The balance is
// read again in the same unit of work as the records, since the scanned
// balance may predate transactions applied since.
func (r *Reconciler) reconcileAccount(ctx context.Context, userID string) (*Discrepancy, error) {
	var d *Discrepancy
	err := r.transactor.WithinTx(ctx, func(ctx context.Context) error {
		account, err := r.accounts.Get(ctx, userID)
		if err != nil {
			return err
		}
		txns, err := r.txnLog.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		expected := account.OpeningBalance
		for _, txn := range txns {
			switch txn.Type {
			case models.Debit:
				expected = expected.Sub(txn.Amount)
			case models.Credit:
				expected = expected.Add(txn.Amount)
			}
		}

		if !expected.Equal(account.Balance) {
			d = &Discrepancy{
				UserID:   userID,
				Stored:   account.Balance,
				Expected: expected,
				Records:  len(txns),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Run reconciles every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			found, err := r.Reconcile(ctx)
			if err != nil {
				logger.Log.Errorw("reconciliation failed", "error", err)
				continue
			}
			for _, d := range found {
				logger.Log.Errorw("balance does not match transaction history",
					"userID", d.UserID,
					"stored", d.Stored,
					"expected", d.Expected,
					"records", d.Records,
				)
			}
			logger.Log.Infow("reconciliation finished", "discrepancies", len(found))
		}
	}
}
