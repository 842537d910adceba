package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenMalformed is returned when a token cannot be parsed or its signature is invalid
	ErrTokenMalformed = errors.New("token malformed or signature invalid")

	// ErrTokenExpired is returned when a token is past its embedded expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSubject is returned when a valid token carries no usable identity claim
	ErrMissingSubject = errors.New("token missing subject claim")
)

// DefaultSessionTTL is the lifetime of an issued session token.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Service issues and verifies signed session tokens. It is stateless:
// verification needs only the signing secret and the token itself. The
// secret is loaded once at startup and never rotated mid-process.
type Service struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithSessionTTL overrides the session token lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithAudience overrides the audience claim.
func WithAudience(audience string) Option {
	return func(s *Service) {
		s.audience = audience
	}
}

// NewService creates a session token service signing with the given secret.
func NewService(secret, issuer string, opts ...Option) *Service {
	s := &Service{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: "public",
		ttl:      DefaultSessionTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Issue creates a signed token asserting the given user id until the
// session expiry.
func (s *Service) Issue(userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Minute)),
		Issuer:    s.issuer,
		Subject:   userID,
		ID:        uuid.New().String(),
		Audience:  jwt.ClaimStrings{s.audience},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(s.secret)
	if err != nil {
		slog.Error("Failed sign JWT claim string!", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}

// Verify parses and validates a token string and returns the user id it
// asserts.
func (s *Service) Verify(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", ErrTokenMalformed
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
