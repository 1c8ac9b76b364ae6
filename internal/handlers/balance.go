package handlers

//go:generate mockgen -source=balance.go -destination=balance_mock_test.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// BalanceReader defines the interface that the service must implement.
type BalanceReader interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// BalanceResponse represents a successful balance lookup
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Success message
	// default: User balance retrieved successfully
	Message string `json:"message"`

	// Current balance
	// default: 100
	Balance decimal.Decimal `json:"balance" swaggertype:"string"`
}

// NewGetBalanceHandler returns an HTTP handler for fetching a user's balance.
// @Summary Get user balance
// @Description Returns the current balance of an account
// @Tags accounts
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} handlers.BalanceResponse "User balance"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /users/{userID}/balance [get]
func NewGetBalanceHandler(svc BalanceReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		balance, err := svc.GetBalance(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BalanceResponse{
			Message: "User balance retrieved successfully",
			Balance: balance,
		})
	}
}
