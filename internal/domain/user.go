package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
)

// User represents a registered user of the bank.
// It contains identity and authentication details; balances are never stored
// on the user itself but on the accounts and card it owns.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Firstname      string    `json:"firstname"`
	Lastname       string    `json:"lastname"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	DateOfBirth    time.Time `json:"dob"`
	Gender         string    `json:"gender"`
	Tel            string    `json:"tel"`
	Tag            string    `json:"tag"`
	Roles          []string  `json:"roles"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given registration details.
// It generates a new UUID for the user ID, derives the public tag from the
// username, assigns the default role and sets the timestamps.
// Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(username, firstname, lastname, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Firstname: firstname,
		Lastname:  lastname,
		Password:  password, // Plaintext password - must be hashed before storage
		Tag:       "ob_" + username,
		Roles:     []string{"USER"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// FullName returns the user's display name as used on accounts and cards.
func (u *User) FullName() string {
	return u.Firstname + " " + u.Lastname
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}

	if u.Password != "" {
		// bcrypt silently truncates input beyond 72 bytes
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else {
		// Existing users loaded from the store carry only the hash.
		if u.HashedPassword == "" {
			return ErrEmptyPassword
		}
	}

	return nil
}
