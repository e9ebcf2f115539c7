package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/openbank/openbank-api/internal/api/shared"
	"github.com/openbank/openbank-api/internal/service"
)

// TransactionHandler handles transaction-history API requests.
type TransactionHandler struct {
	transactions *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// List handles GET /transactions: returns a page of the user's history.
// Optional query parameters narrow the history to a single account or card;
// page selects the zero-indexed page.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid page number")
			return
		}
		page = parsed
	}

	accountParam := r.URL.Query().Get("account_id")
	cardParam := r.URL.Query().Get("card_id")
	if accountParam != "" && cardParam != "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Filter by either account_id or card_id, not both")
		return
	}

	switch {
	case accountParam != "":
		accountID, err := uuid.Parse(accountParam)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid account ID")
			return
		}
		txs, err := h.transactions.AccountHistory(r.Context(), userID, accountID, page)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, txs)

	case cardParam != "":
		cardID, err := uuid.Parse(cardParam)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
			return
		}
		txs, err := h.transactions.CardHistory(r.Context(), userID, cardID, page)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, txs)

	default:
		txs, err := h.transactions.History(r.Context(), userID, page)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, txs)
	}
}
