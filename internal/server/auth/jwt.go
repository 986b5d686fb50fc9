// Package auth issues and verifies the gateway's HS256 bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload: sub, exp, iat and jti.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies access tokens under one symmetric key.
type TokenService struct {
	secretKey []byte
	lifetime  time.Duration
	now       func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock replaces time.Now, used by tests to move across expiry.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secretKey []byte, lifetime time.Duration, opts ...Option) *TokenService {
	s := &TokenService{
		secretKey: secretKey,
		lifetime:  lifetime,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Lifetime returns how long issued tokens stay valid.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue returns a signed token for username, expiring after the lifetime.
// The issue time is truncated to the second, the precision of iat and exp,
// so the encoded iat is the exact start of the validity window.
func (s *TokenService) Issue(username string) (string, error) {
	now := s.now().UTC().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.NewString(),
		},
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks a raw Authorization header value and returns the subject.
// Errors are one of common.ErrMissingCredential, common.ErrInvalidScheme,
// common.ErrInvalidOrExpiredToken or common.ErrInvalidPayload.
func (s *TokenService) Verify(header string) (string, error) {
	raw, err := bearerToken(header)
	if err != nil {
		return "", err
	}
	return s.ParseToken(raw)
}

// ParseToken verifies a bare token string and returns its subject.
func (s *TokenService) ParseToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidOrExpiredToken, err)
	}
	if !token.Valid {
		return "", common.ErrInvalidOrExpiredToken
	}

	if claims.Subject == "" {
		return "", common.ErrInvalidPayload
	}

	return claims.Subject, nil
}

// bearerToken splits "Bearer <token>"; the scheme is matched case-insensitively.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", common.ErrMissingCredential
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return "", common.ErrInvalidScheme
	}

	return parts[1], nil
}

// IsAuthError reports whether err belongs to the token verification taxonomy.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrMissingCredential) ||
		errors.Is(err, common.ErrInvalidScheme) ||
		errors.Is(err, common.ErrInvalidOrExpiredToken) ||
		errors.Is(err, common.ErrInvalidPayload)
}
