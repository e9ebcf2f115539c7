package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username    string `json:"username"  validate:"required,min=3,max=64"`
	Firstname   string `json:"firstname" validate:"required,max=64"`
	Lastname    string `json:"lastname"  validate:"required,max=64"`
	Password    string `json:"password"  validate:"required,min=8,max=72"`
	DateOfBirth string `json:"dob"       validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender"    validate:"omitempty,max=16"`
	Tel         string `json:"tel"       validate:"omitempty,max=32"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Tag    string    `json:"tag"`

	// Token is the JWT used for API authorization.
	Token string `json:"token"`
}

// CreateAccountRequest defines the payload for opening a new account.
type CreateAccountRequest struct {
	Code   string `json:"code"   validate:"required,len=3,uppercase"`
	Symbol string `json:"symbol" validate:"required,max=8"`
}

// TransferRequest defines the payload for transferring funds to another
// account. The recipient is addressed by account number; the sending account
// is selected by currency code.
type TransferRequest struct {
	Code            string  `json:"code"             validate:"required,len=3,uppercase"`
	RecipientNumber int64   `json:"recipient_number" validate:"required"`
	Amount          float64 `json:"amount"           validate:"required,gt=0"`
}

// ConvertRequest defines the payload for converting funds between two of the
// user's own accounts.
type ConvertRequest struct {
	FromCode string  `json:"from_code" validate:"required,len=3,uppercase"`
	ToCode   string  `json:"to_code"   validate:"required,len=3,uppercase"`
	Amount   float64 `json:"amount"`
}

// CreateCardRequest defines the payload for issuing a card.
type CreateCardRequest struct {
	Amount float64 `json:"amount" validate:"required"`
}

// CardAmountRequest defines the payload for crediting or debiting a card.
type CardAmountRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// RatesResponse defines the response for the exchange-rates endpoint.
type RatesResponse struct {
	Base        string             `json:"base"`
	Rates       map[string]float64 `json:"rates"`
	RefreshedAt time.Time          `json:"refreshed_at"`
}
