// Package auth provides JWT token issuance/verification, bcrypt password
// hashing, the identity-resolving middleware, and the GitHub OAuth provider.
//
// The JWT is stateless: everything needed to resolve the caller (subject ID,
// expiry) is inside the signed token, so verification needs no store lookup.
// There is no revocation list; a token is invalidated only by expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "dev-bastion"

	// TokenLifetime is how long an issued token stays valid.
	TokenLifetime = 2 * time.Hour
)

// Verification failures, distinguishable with errors.Is. The middleware
// deliberately collapses all three into one 401 response so callers cannot
// probe which check failed.
var (
	ErrExpired      = errors.New("auth: token expired")
	ErrMalformed    = errors.New("auth: token malformed")
	ErrBadSignature = errors.New("auth: token signature invalid")
)

// TokenService signs and verifies bearer tokens.
//
// It holds the process-wide HMAC secret, loaded once at startup and passed
// in explicitly. The secret is never logged.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The subject ("sub") carries the user ID.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a token for the given userID, valid for
// TokenLifetime from now.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, TokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to exercise the expiry boundary.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
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

// Validate parses and verifies a token string against the current time.
// Returns the userID stored in the subject claim.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	return s.ValidateAt(tokenStr, time.Now())
}

// ValidateAt verifies a token as of the given instant. There is no leeway
// window: a token is rejected the moment now reaches its expiry.
//
// Checks performed: HMAC-SHA256 signature, expiry, issuer, and that the
// signing algorithm is HS256 (jwt.WithValidMethods closes the algorithm
// confusion hole where a "none"-signed token could slip through).
func (s *TokenService) ValidateAt(tokenStr string, now time.Time) (string, error) {
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
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrBadSignature
		default:
			return "", fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", ErrMalformed
	}

	userID := c.Subject
	if userID == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrMalformed)
	}

	return userID, nil
}
