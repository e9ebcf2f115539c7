package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card validation errors
var (
	ErrEmptyCardID       = errors.New("card ID cannot be empty")
	ErrEmptyCardOwner    = errors.New("card owner cannot be empty")
	ErrInvalidCardNumber = errors.New("card number must be 16 digits")
	ErrInvalidCVV        = errors.New("cvv must be 3 digits")
)

// CardNumberDigits is the fixed width of generated card numbers.
const CardNumberDigits = 16

// CardValidityYears is how long an issued card remains valid.
const CardValidityYears = 3

// Card is an independent balance store funded from a user's USD account.
// Each user owns at most one card; the owner uniqueness is enforced by the
// store.
type Card struct {
	ID             uuid.UUID `json:"card_id"`
	CardNumber     int64     `json:"card_number"`
	CardHolder     string    `json:"card_holder"`
	Balance        float64   `json:"balance"`
	CVV            string    `json:"cvv"`
	PIN            string    `json:"-"`
	BillingAddress string    `json:"billing_address"`
	IssuedAt       time.Time `json:"iss"`
	ExpiresAt      time.Time `json:"exp"`
	OwnerID        uuid.UUID `json:"-"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewCard creates a new Card for the given owner with the supplied card
// number and CVV. Expiry is fixed at CardValidityYears from issuance.
func NewCard(ownerID uuid.UUID, cardHolder string, cardNumber int64, cvv string, balance float64) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:         uuid.New(),
		CardNumber: cardNumber,
		CardHolder: cardHolder,
		Balance:    balance,
		CVV:        cvv,
		IssuedAt:   now,
		ExpiresAt:  now.AddDate(CardValidityYears, 0, 0),
		OwnerID:    ownerID,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCardID
	}

	if c.OwnerID == uuid.Nil {
		return ErrEmptyCardOwner
	}

	if c.CardNumber < 1_000_000_000_000_000 || c.CardNumber > 9_999_999_999_999_999 {
		return ErrInvalidCardNumber
	}

	if len(c.CVV) != 3 {
		return ErrInvalidCVV
	}

	return nil
}
