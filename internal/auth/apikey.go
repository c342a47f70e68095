package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"erpgate.dev/internal/ids"
)

const (
	// KeyStatusActive marks a usable key; anything else is rejected.
	KeyStatusActive = "active"
	// KeyStatusRevoked marks a key that must stop working immediately.
	KeyStatusRevoked = "revoked"

	keyPrefix = "ek_"
)

// APIKey is a hashed machine credential bound to a single tenant. The raw
// secret exists only in the minting response; at rest the record keeps a
// SHA-256 fingerprint for lookup and a bcrypt hash for verification.
type APIKey struct {
	ID           string
	TenantID     string
	Fingerprint  string // hex SHA-256 of the raw key, lookup index
	SecretHash   string // bcrypt of the raw key
	Capabilities CapabilitySet
	Status       string
	CreatedAt    time.Time
	LastUsedAt   time.Time
}

// Fingerprint computes the lookup hash of a raw key.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// MintKey generates a fresh API key for a tenant. The returned raw string is
// shown to the operator exactly once and never stored.
func MintKey(tenantID string, caps CapabilitySet) (raw string, rec APIKey, err error) {
	if tenantID == "" {
		return "", APIKey{}, errors.New("auth: tenant id is required")
	}
	// 24 bytes of entropy keeps the full raw key under bcrypt's 72-byte cap.
	secret := make([]byte, 24)
	if _, err := rand.Read(secret); err != nil {
		return "", APIKey{}, err
	}
	id := ids.New()
	raw = keyPrefix + id + "." + base64.RawURLEncoding.EncodeToString(secret)

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", APIKey{}, err
	}
	rec = APIKey{
		ID:           id,
		TenantID:     tenantID,
		Fingerprint:  Fingerprint(raw),
		SecretHash:   string(hash),
		Capabilities: caps,
		Status:       KeyStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	return raw, rec, nil
}

// VerifySecret compares a raw key against the stored bcrypt hash.
func (k *APIKey) VerifySecret(raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(k.SecretHash), []byte(raw))
}
