package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Capability names a permission required to perform an operation, namespaced
// as <domain>.<action>. The set is fixed at deploy time; keys are granted a
// subset, first-party users implicitly hold all of them.
type Capability string

const (
	CapCRMRead        Capability = "crm.read"
	CapCRMWrite       Capability = "crm.write"
	CapFinanceRead    Capability = "finance.read"
	CapFinanceWrite   Capability = "finance.write"
	CapInventoryRead  Capability = "inventory.read"
	CapInventoryWrite Capability = "inventory.write"
)

// Catalog lists every capability the gateway knows about.
var Catalog = []Capability{
	CapCRMRead,
	CapCRMWrite,
	CapFinanceRead,
	CapFinanceWrite,
	CapInventoryRead,
	CapInventoryWrite,
}

// ParseCapability validates a capability string against the catalog.
func ParseCapability(s string) (Capability, error) {
	c := Capability(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range Catalog {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// CapabilitySet is the granted permission set of an API-key principal.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from a slice, ignoring duplicates.
func NewCapabilitySet(caps []Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the members in lexical order, for logs and storage.
func (s CapabilitySet) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
