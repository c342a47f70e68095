package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuer = "erpgate"

// Claims are the JWT claims the gateway understands. TenantID is the tenant
// hint embedded by the identity provider at sign-in.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService verifies (and, for first-party sign-in flows, issues) HS256
// bearer tokens. The signing secret is injected at construction; there is no
// ambient global.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// TokenOption configures TokenService.
type TokenOption func(*TokenService)

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService constructs a TokenService with the given signing secret.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: token secret is required")
	}
	s := &TokenService{
		secret: secret,
		issuer: defaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for the given user scoped to tenantID.
func (s *TokenService) Issue(userID, tenantID string, ttl time.Duration) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, errors.New("auth: user id is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("auth: ttl must be greater than zero")
	}

	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		TenantID: strings.TrimSpace(tenantID),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyToken checks signature, issuer and expiry, and returns the claims.
// Every failure mode collapses to ErrInvalidCredential: the caller must not be
// able to distinguish a forged token from an expired one.
func (s *TokenService) VerifyToken(ctx context.Context, raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrInvalidCredential
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidCredential
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, ErrInvalidCredential
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidCredential
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalidCredential
	}
	return *claims, nil
}
