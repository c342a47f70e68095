package auth

import (
	"strings"
	"testing"
)

func TestMintKey(t *testing.T) {
	caps := NewCapabilitySet([]Capability{CapCRMRead, CapCRMWrite})
	raw, rec, err := MintKey("acme", caps)
	if err != nil {
		t.Fatalf("MintKey: %v", err)
	}
	if !strings.HasPrefix(raw, "ek_") {
		t.Fatalf("raw key missing prefix: %s", raw)
	}
	if rec.TenantID != "acme" || rec.Status != KeyStatusActive {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Fingerprint != Fingerprint(raw) {
		t.Fatalf("fingerprint does not match raw key")
	}
	if strings.Contains(rec.SecretHash, raw) {
		t.Fatalf("secret hash must not embed the raw key")
	}
	if err := rec.VerifySecret(raw); err != nil {
		t.Fatalf("VerifySecret: %v", err)
	}
	if err := rec.VerifySecret(raw + "x"); err == nil {
		t.Fatalf("expected mismatch for tampered key")
	}
	if !rec.Capabilities.Has(CapCRMRead) || rec.Capabilities.Has(CapFinanceWrite) {
		t.Fatalf("unexpected capabilities: %v", rec.Capabilities.Sorted())
	}
}

func TestMintKeyRequiresTenant(t *testing.T) {
	if _, _, err := MintKey("", nil); err == nil {
		t.Fatal("expected error for empty tenant")
	}
}

func TestMintKeysAreUnique(t *testing.T) {
	rawA, recA, err := MintKey("acme", nil)
	if err != nil {
		t.Fatalf("MintKey: %v", err)
	}
	rawB, recB, err := MintKey("acme", nil)
	if err != nil {
		t.Fatalf("MintKey: %v", err)
	}
	if rawA == rawB || recA.ID == recB.ID || recA.Fingerprint == recB.Fingerprint {
		t.Fatalf("expected distinct keys")
	}
}

func TestParseCapability(t *testing.T) {
	if c, err := ParseCapability(" Finance.Write "); err != nil || c != CapFinanceWrite {
		t.Fatalf("ParseCapability: %v %v", c, err)
	}
	if _, err := ParseCapability("hr.fire"); err == nil {
		t.Fatal("expected error for unknown capability")
	}
}
