package auth

import "context"

// KeyStore is the persistence contract for API keys. FindKey must return the
// record regardless of status; the resolver decides between "invalid" and
// "revoked" so that revocation is reported distinctly.
type KeyStore interface {
	CreateKey(ctx context.Context, key *APIKey) error
	FindKey(ctx context.Context, tenantID, fingerprint string) (*APIKey, error)
	RevokeKey(ctx context.Context, id string) error
	ListKeys(ctx context.Context, tenantID string) ([]*APIKey, error)
}

// TokenVerifier validates a raw bearer token against the identity provider.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (Claims, error)
}
