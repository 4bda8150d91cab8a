package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is the fixed absolute lifetime of a session token.
const DefaultTokenLifetime = 5 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// UserClaim identifies the token holder
type UserClaim struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// JWTClaims serializes as {"user":{"id","role"},"iat","exp"}
type JWTClaims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey []byte
	lifetime  time.Duration
	now       func() time.Time
}

// NewJWTUtil creates a new JWTUtil. A non-positive lifetime falls back to DefaultTokenLifetime.
func NewJWTUtil(secretKey string, lifetime time.Duration) *JWTUtil {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &JWTUtil{secretKey: []byte(secretKey), lifetime: lifetime, now: time.Now}
}

// WithClock replaces the time source used for issuing and validating tokens
func (ju *JWTUtil) WithClock(now func() time.Time) *JWTUtil {
	ju.now = now
	return ju
}

// Lifetime returns the configured token lifetime
func (ju *JWTUtil) Lifetime() time.Duration {
	return ju.lifetime
}

// GenerateToken generates a new signed token for the given user
func (ju *JWTUtil) GenerateToken(userID, role string) (string, error) {
	issuedAt := ju.now()
	claims := &JWTClaims{
		User: UserClaim{ID: userID, Role: role},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ju.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies signature, algorithm and expiry, and returns the claims
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	}, jwt.WithTimeFunc(ju.now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.User.ID == "" || claims.User.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
