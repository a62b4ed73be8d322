// Package auth validates bearer tokens issued to underwriters and producers
// and carries their tenant and roles through the request context.
package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims accepted by the underwriting service.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	Name     string   `json:"name,omitempty"`
	TenantID string   `json:"tenant_id"`
	Roles    []string `json:"roles"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether the claims include at least one of roles.
func (c Claims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// Role constants
const (
	RoleAdmin             = "admin"
	RoleUnderwriter       = "underwriter"
	RoleSeniorUnderwriter = "senior_underwriter"
	RoleProducer          = "producer"
	RoleAuditor           = "auditor"
)
