package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openbank/openbank-api/internal/api/shared"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/service"
)

// RateMeta reports when the cached exchange rates were last refreshed.
type RateMeta interface {
	RefreshedAt() time.Time
}

// AccountHandler handles account-related API requests.
type AccountHandler struct {
	ledger    *service.LedgerService
	rateMeta  RateMeta
	validator *validator.Validate
}

// NewAccountHandler creates a new AccountHandler with the given dependencies.
// rateMeta may be nil, in which case the rates endpoint omits the refresh time.
func NewAccountHandler(ledger *service.LedgerService, rateMeta RateMeta) *AccountHandler {
	return &AccountHandler{
		ledger:    ledger,
		rateMeta:  rateMeta,
		validator: validator.New(),
	}
}

// Create handles POST /accounts: opens a new account in the given currency.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if _, ok := domain.SupportedCurrencies[req.Code]; !ok {
		HandleAPIError(w, r, domain.ErrInvalidCurrencyCode, "")
		return
	}

	account, err := h.ledger.CreateAccount(r.Context(), userID, req.Code, req.Symbol)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, account)
}

// List handles GET /accounts: returns all of the user's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	accounts, err := h.ledger.GetUserAccounts(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, accounts)
}

// Transfer handles POST /accounts/transfer: moves funds to another account.
func (h *AccountHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tx, err := h.ledger.Transfer(r.Context(), userID, req.Code, req.RecipientNumber, req.Amount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tx)
}

// Convert handles POST /accounts/convert: converts funds between two of the
// user's accounts at the current exchange rate.
func (h *AccountHandler) Convert(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ConvertRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tx, err := h.ledger.ConvertCurrency(r.Context(), userID, req.FromCode, req.ToCode, req.Amount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tx)
}

// Rates handles GET /accounts/rates: returns the cached exchange rates.
func (h *AccountHandler) Rates(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	rates, err := h.ledger.ExchangeRates(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := RatesResponse{Base: "USD", Rates: rates}
	if h.rateMeta != nil {
		resp.RefreshedAt = h.rateMeta.RefreshedAt()
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Find handles GET /accounts/find: looks up an account by currency code and
// account number so a sender can confirm the recipient before transferring.
func (h *AccountHandler) Find(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	code := r.URL.Query().Get("code")
	if _, ok := domain.SupportedCurrencies[code]; !ok {
		HandleAPIError(w, r, domain.ErrInvalidCurrencyCode, "")
		return
	}

	number, err := strconv.ParseInt(r.URL.Query().Get("account_number"), 10, 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid account number")
		return
	}

	account, err := h.ledger.FindAccount(r.Context(), code, number)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, account)
}
