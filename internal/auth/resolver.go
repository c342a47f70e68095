package auth

import (
	"context"
	"errors"
	"strings"
)

const bearerScheme = "Bearer "

// Credentials are the raw authentication inputs of one request, lifted off
// the transport by the dispatcher.
type Credentials struct {
	Authorization string // Authorization header value
	APIKey        string // X-Api-Key header value
	TenantID      string // X-Company-Id header value
}

// Resolver turns raw credentials into a Principal. It is a pure lookup: no
// rate-limit or tenant state is touched here.
type Resolver struct {
	tokens TokenVerifier
	keys   KeyStore
}

// NewResolver constructs a Resolver over the given identity provider and key
// store.
func NewResolver(tokens TokenVerifier, keys KeyStore) *Resolver {
	return &Resolver{tokens: tokens, keys: keys}
}

// Resolve authenticates one request. Bearer tokens win over API keys when
// both are supplied. The returned principal's TenantID is the tenant the
// credential is scoped to: the token's embedded tenant hint for users, the
// key record's tenant for API keys. Request headers never widen that scope;
// the header only fills in when the token carries no hint at all.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) (Principal, error) {
	authz := strings.TrimSpace(creds.Authorization)
	apiKey := strings.TrimSpace(creds.APIKey)
	tenantID := strings.TrimSpace(creds.TenantID)

	switch {
	case strings.HasPrefix(authz, bearerScheme):
		return r.resolveToken(ctx, strings.TrimSpace(authz[len(bearerScheme):]), tenantID)
	case apiKey != "":
		return r.resolveAPIKey(ctx, apiKey, tenantID)
	default:
		return Principal{}, ErrNoCredential
	}
}

func (r *Resolver) resolveToken(ctx context.Context, raw, tenantID string) (Principal, error) {
	claims, err := r.tokens.VerifyToken(ctx, raw)
	if err != nil {
		if isRejection(err) {
			return Principal{}, err
		}
		return Principal{}, ErrInvalidCredential
	}
	// The credential's own scope wins. A request header must never move a
	// token onto a tenant the identity provider did not bind it to; the
	// guard rejects the mismatch downstream.
	scoped := strings.TrimSpace(claims.TenantID)
	if scoped == "" {
		scoped = tenantID
	}
	return Principal{
		Kind:         KindUser,
		TenantID:     scoped,
		UserID:       claims.Subject,
		Capabilities: CapabilitySet{},
	}, nil
}

func (r *Resolver) resolveAPIKey(ctx context.Context, raw, tenantID string) (Principal, error) {
	if tenantID == "" {
		return Principal{}, ErrTenantRequired
	}
	rec, err := r.keys.FindKey(ctx, tenantID, Fingerprint(raw))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Key absent and key-under-wrong-tenant are deliberately the
			// same answer.
			return Principal{}, ErrInvalidCredential
		}
		return Principal{}, err
	}
	if rec.Status == KeyStatusRevoked {
		return Principal{}, ErrCredentialRevoked
	}
	if rec.Status != KeyStatusActive {
		return Principal{}, ErrInvalidCredential
	}
	if err := rec.VerifySecret(raw); err != nil {
		return Principal{}, ErrInvalidCredential
	}
	return Principal{
		Kind:         KindAPIKey,
		TenantID:     rec.TenantID,
		KeyID:        rec.ID,
		Capabilities: rec.Capabilities,
	}, nil
}

func isRejection(err error) bool {
	var ge *Error
	return errors.As(err, &ge)
}
