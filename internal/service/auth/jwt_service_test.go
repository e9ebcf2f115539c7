package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbank/openbank-api/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestJWTService(t *testing.T) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	return svc.(*hmacJWTService)
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "too-short",
		TokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	other, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "ffffffffffffffffffffffffffffffff",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	token, err := other.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpiry(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	userID := uuid.New()

	issued := time.Now().UTC()
	svc.timeFunc = func() time.Time { return issued }
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	// Beyond lifetime plus the allowed clock skew.
	svc.timeFunc = func() time.Time { return issued.Add(63 * time.Minute) }
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenClockSkew(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	userID := uuid.New()

	issued := time.Now().UTC()
	svc.timeFunc = func() time.Time { return issued }
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	// Just past the lifetime but within the skew window.
	svc.timeFunc = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = svc.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}
