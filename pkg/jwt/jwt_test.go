package jwt

import (
	"testing"
	"time"

	"go-medical-booking/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(now time.Time) *JWTService {
	s := NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	s.now = func() time.Time { return now }
	return s
}

func TestJWTService_RoundTrip(t *testing.T) {
	now := time.Now()
	s := newTestService(now)
	userID := uuid.New()

	access, accessID, err := s.GenerateAccessToken(userID, "jane@example.com")
	require.NoError(t, err)
	refresh, refreshID, err := s.GenerateRefreshToken(userID, "jane@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, accessID, refreshID)

	claims, err := s.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, accessID, claims.TokenID)
	assert.Equal(t, issuer, claims.Issuer)

	claims, err = s.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.TokenType)
	assert.Equal(t, refreshID, claims.TokenID)
}

func TestJWTService_Rejects(t *testing.T) {
	now := time.Now()
	s := newTestService(now)
	userID := uuid.New()
	token, _, err := s.GenerateAccessToken(userID, "jane@example.com")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestService(now.Add(16 * time.Minute))
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		other := newTestService(now)
		other.config.Secret = "another-secret"
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserID:    userID,
			TokenType: AccessToken,
			TokenID:   uuid.NewString(),
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = s.ValidateToken(foreign)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}
