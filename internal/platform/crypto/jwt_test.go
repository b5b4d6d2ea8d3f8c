package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	tok, err := GenerateToken("secret", "user-1", "Admin", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := ParseToken("secret", tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "Admin", claims.Role)
	assert.Equal(t, tok.ID, claims.ID)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestParseToken_Rejects(t *testing.T) {
	now := time.Now()
	sign := func(secret string, c Claims) string {
		s, err := Sign(secret, c)
		require.NoError(t, err)
		return s
	}

	foreign := NewClaims("user-1", "User", now, time.Hour)
	foreign.Issuer = "someone-else"

	anonymous := NewClaims("", "User", now, time.Hour)

	noExpiry := NewClaims("user-1", "User", now, time.Hour)
	noExpiry.ExpiresAt = nil

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, NewClaims("user-1", "Admin", now, time.Hour)).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret":   sign("other", NewClaims("user-1", "User", now, time.Hour)),
		"expired":        sign("secret", NewClaims("user-1", "User", now.Add(-2*time.Hour), time.Hour)),
		"foreign issuer": sign("secret", foreign),
		"no subject":     sign("secret", anonymous),
		"no expiry":      sign("secret", noExpiry),
		"alg none":       none,
		"garbage":        "not.a.jwt",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken("secret", token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
