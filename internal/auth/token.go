package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and validates the short-lived admin session tokens
// returned by admin PIN verification, so the dashboard does not have to
// replay the PIN on every request.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// AdminClaims are the claims carried by an admin session token
type AdminClaims struct {
	jwt.RegisteredClaims
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Generate issues a signed admin token and its expiry time.
func (tm *TokenManager) Generate() (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.expiry)

	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "isitopen",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign admin token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate checks a token's signature and expiry.
func (tm *TokenManager) Validate(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid admin token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid admin token")
	}
	return nil
}
