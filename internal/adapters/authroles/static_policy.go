package authroles

// Package authroles holds the authorization policy table. The table is
// plain data injected into the auth facade so the policy can be audited
// and tested independently of the gateway plumbing.

import (
	"strings"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

// RolePolicy describes what a role may do beyond its granted set.
type RolePolicy struct {
	// ImplicitAll grants every capability outside reserved namespaces
	// without consulting the granted permission set.
	ImplicitAll bool
}

// StaticAccessPolicy is a role-capability table. Capabilities are
// namespaced "area:action"; NamespaceRoles reserves whole namespaces for
// specific roles regardless of any granted set.
type StaticAccessPolicy struct {
	Roles          map[domainsession.Role]RolePolicy
	NamespaceRoles map[string][]domainsession.Role
}

var _ ports.AccessPolicy = StaticAccessPolicy{}

// Default returns the policy table for the upstream role codes: platform
// operators and tenant admins carry implicit access, the platform:
// namespace is reserved for platform operators, and every other role is
// limited to its granted set.
func Default() StaticAccessPolicy {
	return StaticAccessPolicy{
		Roles: map[domainsession.Role]RolePolicy{
			domainsession.RoleSuperAdmin:  {ImplicitAll: true},
			domainsession.RoleTenantAdmin: {ImplicitAll: true},
			domainsession.RoleTeacher:     {},
			domainsession.RoleParent:      {},
			domainsession.RoleAccountant:  {},
			domainsession.RoleStudent:     {},
		},
		NamespaceRoles: map[string][]domainsession.Role{
			"platform": {domainsession.RoleSuperAdmin},
		},
	}
}

// Allows reports whether role, holding the granted capability set, may
// exercise capability.
func (p StaticAccessPolicy) Allows(role domainsession.Role, granted []string, capability string) bool {
	if capability == "" {
		return false
	}

	// Reserved namespaces override everything, including implicit grants.
	if ns, ok := namespaceOf(capability); ok {
		if reserved, reservedOK := p.NamespaceRoles[ns]; reservedOK {
			for _, r := range reserved {
				if r == role {
					return true
				}
			}
			return false
		}
	}

	if p.Roles[role].ImplicitAll {
		return true
	}
	for _, g := range granted {
		if g == capability {
			return true
		}
	}
	return false
}

func namespaceOf(capability string) (string, bool) {
	i := strings.IndexByte(capability, ':')
	if i <= 0 {
		return "", false
	}
	return capability[:i], true
}
