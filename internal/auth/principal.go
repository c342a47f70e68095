package auth

// Kind distinguishes how a principal authenticated.
type Kind string

const (
	// KindUser is a first-party user carrying a signed bearer token.
	KindUser Kind = "user"
	// KindAPIKey is a machine credential bound to a single tenant.
	KindAPIKey Kind = "api_key"
)

// Principal is the resolved identity of one request. It is built once by the
// resolver, carried through the request context, and never persisted.
//
// First-party users carry an empty capability set and bypass scope checks
// entirely; the trust decision is delegated to the identity provider that
// signed their token. API keys are authorized only for the capabilities
// granted to the key record.
type Principal struct {
	Kind         Kind
	TenantID     string
	UserID       string // set iff Kind == KindUser
	KeyID        string // set iff Kind == KindAPIKey
	Capabilities CapabilitySet
}

// Identity returns the stable identifier used in audit logs.
func (p Principal) Identity() string {
	if p.Kind == KindAPIKey {
		return "key:" + p.KeyID
	}
	return "user:" + p.UserID
}

// Authorize reports whether the principal may perform an operation requiring
// the given capability. User principals pass unconditionally.
func (p Principal) Authorize(required Capability) error {
	if p.Kind == KindUser {
		return nil
	}
	if p.Capabilities.Has(required) {
		return nil
	}
	return ErrInsufficientScope
}
