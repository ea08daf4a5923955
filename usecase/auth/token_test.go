package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/domain"
)

func TestVerifyResetRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "dhanadurga", time.Hour, 15*time.Minute)
	user := &domain.User{ID: "u1", Email: "priya@example.com"}

	token, err := issuer.Reset(user, time.Now())
	require.NoError(t, err)

	email, err := issuer.VerifyReset(token)
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", email)
}

func TestVerifyResetRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "dhanadurga", time.Hour, 15*time.Minute)
	other := NewTokenIssuer("other-secret", "dhanadurga", time.Hour, 15*time.Minute)
	user := &domain.User{ID: "u1", Email: "priya@example.com"}

	token, err := other.Reset(user, time.Now())
	require.NoError(t, err)

	_, err = issuer.VerifyReset(token)
	assert.Error(t, err)
}

func TestVerifyResetRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "dhanadurga", time.Hour, 15*time.Minute)
	user := &domain.User{ID: "u1", Email: "priya@example.com"}

	token, err := issuer.Reset(user, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = issuer.VerifyReset(token)
	assert.Error(t, err)
}
