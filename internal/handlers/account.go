package handlers

//go:generate mockgen -source=account.go -destination=account_mock_test.go -package=handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// AccountCreator defines the interface that the service must implement.
type AccountCreator interface {
	CreateAccount(ctx context.Context, name string) (*models.Account, error)
}

// AccountLister lists accounts.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
}

// CreateAccountRequest represents the JSON body for account creation
// swagger:model CreateAccountRequest
type CreateAccountRequest struct {
	// Account holder name
	// required: true
	// default: john_doe
	Name string `json:"name"`
}

// CreateAccountResponse represents a successful account creation
// swagger:model CreateAccountResponse
type CreateAccountResponse struct {
	// Success message
	// default: User created successfully
	Message string `json:"message"`

	// Id of the new account
	UserID string `json:"userId"`

	// Opening balance
	// default: 100
	Balance decimal.Decimal `json:"balance" swaggertype:"string"`
}

// AccountView is a single account in a listing
// swagger:model AccountView
type AccountView struct {
	UserID  string          `json:"userId"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance" swaggertype:"string"`
}

// ListAccountsResponse represents the account listing
// swagger:model ListAccountsResponse
type ListAccountsResponse struct {
	Accounts []AccountView `json:"accounts"`
}

// NewCreateAccountHandler returns an HTTP handler for account creation.
// @Summary Create account
// @Description Opens an account credited with the opening balance
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body handlers.CreateAccountRequest true "Account creation request"
// @Success 201 {object} handlers.CreateAccountResponse "User created successfully"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Account already exists"
// @Router /users [put]
func NewCreateAccountHandler(svc AccountCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		account, err := svc.CreateAccount(r.Context(), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateAccountResponse{
			Message: "User created successfully",
			UserID:  account.UserID,
			Balance: account.Balance,
		})
	}
}

// NewListAccountsHandler returns an HTTP handler listing every account.
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} handlers.ListAccountsResponse "Accounts"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /users [get]
func NewListAccountsHandler(svc AccountLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := svc.ListAccounts(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		resp := ListAccountsResponse{Accounts: make([]AccountView, 0, len(accounts))}
		for _, a := range accounts {
			resp.Accounts = append(resp.Accounts, AccountView{UserID: a.UserID, Name: a.Name, Balance: a.Balance})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
