package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewManager("", "couponhub", time.Hour)
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		m, err := NewManager("secret", "", 0)
		require.NoError(t, err)
		require.NotNil(t, m)
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	m, err := NewManager("test-secret", "couponhub", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := m.GenerateToken("user-123", "premium")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "premium", claims.Role)
	assert.Equal(t, "couponhub", claims.Issuer)
}

func TestParseToken_Invalid(t *testing.T) {
	m, err := NewManager("test-secret", "couponhub", time.Hour)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ParseToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewManager("other-secret", "couponhub", time.Hour)
		require.NoError(t, err)
		token, _, err := other.GenerateToken("user-123", "user")
		require.NoError(t, err)

		_, err = m.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		short, err := NewManager("test-secret", "couponhub", time.Nanosecond)
		require.NoError(t, err)
		token, _, err := short.GenerateToken("user-123", "user")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = m.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects unsigned algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-123", Role: "admin"})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.ParseToken(raw)
		assert.Error(t, err)
	})
}
