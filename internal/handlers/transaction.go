package handlers

//go:generate mockgen -source=transaction.go -destination=transaction_mock_test.go -package=handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// IdempotencyKeyHeader carries a caller-chosen transaction id.
const IdempotencyKeyHeader = "Idempotency-Key"

// TransactionApplier defines the interface that the service must implement.
type TransactionApplier interface {
	ApplyTransaction(ctx context.Context, req models.TransactionRequest) (*models.TransactionResult, error)
}

// TransactionRequest represents the JSON body for applying a transaction
// swagger:model TransactionRequest
type TransactionRequest struct {
	// Account to debit or credit
	// required: true
	UserID string `json:"userId"`

	// Positive amount, as a number or a decimal string
	// required: true
	// default: 30
	Amount json.RawMessage `json:"amount" swaggertype:"number"`

	// debit or credit
	// required: true
	// default: debit
	Type string `json:"type"`

	// Optional idempotency key (UUID). The Idempotency-Key header takes precedence.
	TransactionID string `json:"transactionId,omitempty"`
}

// TransactionResponse represents a successful transaction response
// swagger:model TransactionResponse
type TransactionResponse struct {
	// Success message
	// default: Transaction successful
	Message string `json:"message"`

	// Id of the applied transaction
	TransactionID string `json:"transactionId"`

	// debit or credit
	Type string `json:"type"`

	// True when the transaction had already been applied by an earlier request
	Replayed bool `json:"replayed"`
}

// rawAmount returns the amount as text, accepting JSON numbers and strings.
func rawAmount(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}

// NewApplyTransactionHandler returns an HTTP handler that applies a debit or credit.
// @Summary Apply transaction
// @Description Debits or credits an account. Retrying with the same transaction id has no further effect.
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Transaction id (UUID)"
// @Param request body handlers.TransactionRequest true "Transaction Request"
// @Success 200 {object} handlers.TransactionResponse "Transaction successful"
// @Failure 400 {object} handlers.ErrorResponse "Invalid type, amount or user id"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 409 {object} handlers.ErrorResponse "Insufficient funds or conflicting retry"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /transactions [post]
func NewApplyTransactionHandler(svc TransactionApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Warnw("failed to decode transaction request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		transactionID := req.TransactionID
		if key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader)); key != "" {
			transactionID = key
		}

		result, err := svc.ApplyTransaction(r.Context(), models.TransactionRequest{
			UserID:        req.UserID,
			Amount:        rawAmount(req.Amount),
			Type:          req.Type,
			TransactionID: transactionID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TransactionResponse{
			Message:       "Transaction successful",
			TransactionID: result.TransactionID,
			Type:          string(result.Type),
			Replayed:      result.Replayed,
		})
	}
}
