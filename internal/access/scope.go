// Package access carries the caller's authorization scope through a request:
// either a single district or the elevated cross-district mode used by
// support operators. A Scope is constructed once per inbound request and is
// immutable for its lifetime.
package access

import "fmt"

// Kind distinguishes the two scope modes.
type Kind string

const (
	KindTenant   Kind = "tenant"
	KindElevated Kind = "elevated"
)

// Scope is the caller's authorization scope. The zero value is invalid;
// construct one with Tenant or Elevated.
type Scope struct {
	kind     Kind
	tenantID string
}

// Tenant returns a scope restricted to a single district. The district id
// must be non-empty.
func Tenant(districtID string) (Scope, error) {
	if districtID == "" {
		return Scope{}, fmt.Errorf("access: tenant scope requires a district id")
	}
	return Scope{kind: KindTenant, tenantID: districtID}, nil
}

// Elevated returns the cross-district scope. It carries no district id and
// bypasses tenant filtering entirely.
func Elevated() Scope {
	return Scope{kind: KindElevated}
}

// Kind returns the scope mode.
func (s Scope) Kind() Kind { return s.kind }

// IsElevated reports whether the scope bypasses tenant filtering.
func (s Scope) IsElevated() bool { return s.kind == KindElevated }

// TenantID returns the district id and true under tenant scope, and
// ("", false) under elevated scope.
func (s Scope) TenantID() (string, bool) {
	if s.kind != KindTenant {
		return "", false
	}
	return s.tenantID, true
}

// Valid reports whether the scope was constructed through Tenant or Elevated.
func (s Scope) Valid() bool {
	switch s.kind {
	case KindTenant:
		return s.tenantID != ""
	case KindElevated:
		return s.tenantID == ""
	}
	return false
}

func (s Scope) String() string {
	if s.kind == KindTenant {
		return fmt.Sprintf("tenant(%s)", s.tenantID)
	}
	return string(s.kind)
}
