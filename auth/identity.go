package auth

import (
	"slices"
	"strings"
	"time"

	"github.com/jonwraymond/restpipe/token"
)

// Identity is the principal described by the stored access token.
type Identity struct {
	// Principal is the unique identifier (e.g., user ID, email).
	Principal string

	// TenantID is the tenant this identity belongs to.
	TenantID string

	// Roles are the roles assigned to this identity.
	Roles []string

	// Permissions are explicit permissions or scopes.
	Permissions []string

	// Claims contains the raw claims from the token.
	Claims map[string]any

	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time

	// IssuedAt is when the access token was issued.
	IssuedAt time.Time
}

// HasRole checks if the identity has a specific role.
func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// HasPermission checks if the identity has a specific permission.
func (id *Identity) HasPermission(perm string) bool {
	return id != nil && slices.Contains(id.Permissions, perm)
}

// ExpiredAt reports whether the identity has expired at t.
func (id *Identity) ExpiredAt(t time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return t.After(id.ExpiresAt)
}

// ClaimMapping names the claims Identity is built from.
type ClaimMapping struct {
	// PrincipalClaim holds the principal. Default: "sub"
	PrincipalClaim string

	// TenantClaim holds the tenant ID. Empty disables tenant mapping.
	TenantClaim string

	// RolesClaim holds a list of roles. Default: "roles"
	RolesClaim string

	// ScopesClaim holds permissions, either a list or a space-separated
	// string. Default: "scope"
	ScopesClaim string
}

func (m ClaimMapping) withDefaults() ClaimMapping {
	if m.PrincipalClaim == "" {
		m.PrincipalClaim = "sub"
	}
	if m.RolesClaim == "" {
		m.RolesClaim = "roles"
	}
	if m.ScopesClaim == "" {
		m.ScopesClaim = "scope"
	}
	return m
}

// IdentityFromClaims maps decoded token claims to an Identity.
func IdentityFromClaims(claims token.Claims, mapping ClaimMapping) *Identity {
	mapping = mapping.withDefaults()

	id := &Identity{
		Claims:    make(map[string]any, len(claims.Raw)),
		ExpiresAt: claims.ExpiresAt,
		IssuedAt:  claims.IssuedAt,
	}
	for k, v := range claims.Raw {
		id.Claims[k] = v
	}

	if principal, ok := claims.Raw[mapping.PrincipalClaim].(string); ok {
		id.Principal = principal
	}
	if mapping.TenantClaim != "" {
		if tenant, ok := claims.Raw[mapping.TenantClaim].(string); ok {
			id.TenantID = tenant
		}
	}
	id.Roles = stringList(claims.Raw[mapping.RolesClaim])

	switch scope := claims.Raw[mapping.ScopesClaim].(type) {
	case string:
		id.Permissions = strings.Fields(scope)
	default:
		id.Permissions = stringList(scope)
	}
	return id
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
