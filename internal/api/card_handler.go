package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/openbank/openbank-api/internal/api/shared"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/service"
)

// CardHandler handles card-related API requests.
type CardHandler struct {
	cards     *service.CardService
	validator *validator.Validate
}

// NewCardHandler creates a new CardHandler with the given dependencies.
func NewCardHandler(cards *service.CardService) *CardHandler {
	return &CardHandler{
		cards:     cards,
		validator: validator.New(),
	}
}

// Create handles POST /cards: issues a card funded from the USD account.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	card, err := h.cards.CreateCard(r.Context(), userID, req.Amount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// Get handles GET /cards: returns the user's card.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	card, err := h.cards.GetCard(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// Credit handles POST /cards/credit: moves funds from the USD account onto
// the card.
func (h *CardHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.cards.CreditCard)
}

// Debit handles POST /cards/debit: moves funds from the card back onto the
// USD account.
func (h *CardHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.cards.DebitCard)
}

func (h *CardHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, ownerID uuid.UUID, amount float64) (*domain.Transaction, error),
) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CardAmountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tx, err := op(r.Context(), userID, req.Amount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tx)
}
