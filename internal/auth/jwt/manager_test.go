package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-unit-tests-only"

func testPrincipal() Principal {
	return Principal{
		UserID:               "user-123",
		Username:             "alice",
		IsVerified:           true,
		IsAcceptingMessages:  true,
		IsSendingAnonymously: false,
	}
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	m := NewManager(testSecret, "whisperwall", 15*time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateTokenPair(testPrincipal())
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := m.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsVerified)
	assert.True(t, claims.IsAcceptingMessages)
	assert.False(t, claims.IsSendingAnonymously)
	assert.Equal(t, "whisperwall", claims.Issuer)

	principal := claims.Principal()
	assert.Equal(t, testPrincipal(), principal)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	m := NewManager(testSecret, "whisperwall", 15*time.Minute, 7*24*time.Hour)
	other := NewManager("another-secret-key-entirely-different", "whisperwall", 15*time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateTokenPair(testPrincipal())
	require.NoError(t, err)

	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	m := NewManager(testSecret, "whisperwall", -time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateTokenPair(testPrincipal())
	require.NoError(t, err)

	_, err = m.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshAccessToken(t *testing.T) {
	m := NewManager(testSecret, "whisperwall", 15*time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateTokenPair(testPrincipal())
	require.NoError(t, err)

	newAccess, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ValidateToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}
