package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// AccountService handles account creation and balance lookups.
type AccountService struct {
	accounts AccountStore
	newID    func() string
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts AccountStore) *AccountService {
	return &AccountService{
		accounts: accounts,
		newID:    uuid.NewString,
	}
}

// CreateAccount opens an account for name credited with models.OpeningBalance.
// The insert is conditional, so a colliding id fails with ErrDuplicateAccount
// instead of overwriting an existing account.
func (s *AccountService) CreateAccount(ctx context.Context, name string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrMissingName
	}

	account := models.Account{
		UserID:         s.newID(),
		Name:           name,
		Balance:        models.OpeningBalance,
		OpeningBalance: models.OpeningBalance,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		logger.Log.Errorw("failed to create account", "userID", account.UserID, "error", err)
		return nil, err
	}

	logger.Log.Infow("account created", "userID", account.UserID, "balance", account.Balance)
	return &account, nil
}

// GetBalance returns the current balance of userID.
func (s *AccountService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	account, err := s.accounts.Get(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get account", "userID", userID, "error", err)
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// ListAccounts returns every account.
func (s *AccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.accounts.ScanAll(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list accounts", "error", err)
		return nil, err
	}
	return accounts, nil
}
