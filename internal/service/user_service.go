package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/domain"
	"github.com/openbank/openbank-api/internal/platform/logger"
	"github.com/openbank/openbank-api/internal/service/auth"
	"github.com/openbank/openbank-api/internal/store"
)

// RegisterParams carries the details collected at sign-up.
type RegisterParams struct {
	Username    string
	Firstname   string
	Lastname    string
	Password    string
	DateOfBirth time.Time
	Gender      string
	Tel         string
}

// UserService handles registration and credential verification. Passwords
// are hashed before storage and never logged; login failures collapse to a
// single ErrInvalidCredentials so callers cannot probe which usernames exist.
type UserService struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	jwt      auth.JWTService
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any required dependency is nil.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	jwt auth.JWTService,
	logger *slog.Logger,
) (*UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if jwt == nil {
		return nil, domain.NewValidationError("jwt", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		jwt:      jwt,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register creates a new user account. The plaintext password is hashed and
// discarded before the user reaches the store. A username collision surfaces
// as store.ErrUsernameExists.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (*domain.User, error) {
	log := logger.FromContext(ctx)

	user, err := domain.NewUser(params.Username, params.Firstname, params.Lastname, params.Password)
	if err != nil {
		return nil, err
	}
	user.DateOfBirth = params.DateOfBirth
	user.Gender = params.Gender
	user.Tel = params.Tel

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("tag", user.Tag))
	return user, nil
}

// Authenticate verifies the given credentials and returns the user together
// with a signed token. Unknown usernames and wrong passwords both return
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, string, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Warn("failed login attempt", slog.String("user_id", user.ID.String()))
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// GetUser returns the user with the given ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
