package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatzaot-app/quotes-api/internal/auth"
	"github.com/hatzaot-app/quotes-api/internal/config"
)

func newValidator(secret, issuer string) *auth.JWTValidator {
	return auth.NewJWTValidator(&config.AuthConfig{
		JWTSecret: secret,
		Issuer:    issuer,
	})
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := newValidator("test-secret", "quotes-api")

	token, err := v.IssueToken("user-1", "owner@example.co.il", "בעל העסק", []string{auth.RoleUser}, time.Hour)
	require.NoError(t, err)

	userCtx, err := v.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", userCtx.UserID)
	assert.Equal(t, "owner@example.co.il", userCtx.Email)
	assert.Equal(t, "בעל העסק", userCtx.DisplayName)
	assert.Equal(t, []string{auth.RoleUser}, userCtx.Roles)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	v := newValidator("test-secret", "")

	token, err := v.IssueToken("user-1", "owner@example.co.il", "Owner", []string{auth.RoleUser}, -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	issuing := newValidator("secret-a", "")
	validating := newValidator("secret-b", "")

	token, err := issuing.IssueToken("user-1", "owner@example.co.il", "Owner", nil, time.Hour)
	require.NoError(t, err)

	_, err = validating.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_IssuerMismatch(t *testing.T) {
	issuing := newValidator("test-secret", "someone-else")
	validating := newValidator("test-secret", "quotes-api")

	token, err := issuing.IssueToken("user-1", "owner@example.co.il", "Owner", nil, time.Hour)
	require.NoError(t, err)

	_, err = validating.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_GarbageToken(t *testing.T) {
	v := newValidator("test-secret", "")

	_, err := v.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
