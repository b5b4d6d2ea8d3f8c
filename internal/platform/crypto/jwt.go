package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const Issuer = "booksapi"

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the account id in the registered "sub" claim.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

func NewClaims(userID, role string, issuedAt time.Time, ttl time.Duration) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
}

func Sign(secret string, c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func GenerateToken(secret, userID, role string, ttl time.Duration) (Token, error) {
	c := NewClaims(userID, role, time.Now(), ttl)
	signed, err := Sign(secret, c)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ID: c.ID, ExpiresAt: c.ExpiresAt.Time}, nil
}

// ParseToken accepts only unexpired HS256 tokens issued here and signed with secret.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
