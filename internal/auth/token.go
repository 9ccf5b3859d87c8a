// Package auth provides the optional single-user authentication for the
// REST API: a bcrypt-checked password is exchanged for a short-lived JWT,
// and mutating routes require that token. When no secret is configured the
// server runs open, which is the default for a personal store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "snipstore"

// TokenService signs and verifies the HS256 access tokens. The same secret
// is used for both; at least 16 characters are required.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate issues a token for the store owner, valid for one hour.
func (s *TokenService) Generate() (string, error) {
	return s.GenerateWithDuration(time.Hour)
}

// GenerateWithDuration issues a token with a custom lifetime. Used by tests
// to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(d time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string. Restricting the accepted
// methods to HS256 blocks algorithm-confusion tokens.
func (s *TokenService) Validate(tokenStr string) error {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errors.New("auth: token expired")
		}
		return fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return errors.New("auth: invalid token claims")
	}
	return nil
}
