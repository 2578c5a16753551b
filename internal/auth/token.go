// Package auth issues and verifies identity tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid (one week).
const TokenTTL = 604800 * time.Second

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the token payload.
type Claims struct {
	UserID int `json:"userId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens with a single server secret.
// It keeps no state besides the secret, so it is safe for concurrent use.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

type Option func(*TokenIssuer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(i *TokenIssuer) { i.now = now }
}

func NewTokenIssuer(secret string, opts ...Option) *TokenIssuer {
	i := &TokenIssuer{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a signed token for userID expiring TokenTTL from now.
func (i *TokenIssuer) Issue(userID int) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user id.
func (i *TokenIssuer) Verify(tokenString string) (int, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}
	return claims.UserID, nil
}
