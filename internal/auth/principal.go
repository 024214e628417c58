package auth

import "strings"

// Role is the closed role enumeration. Keep these stable; they are part of
// the token and policy contracts.
type Role string

const (
	RoleViewer  Role = "VIEWER"
	RoleCreator Role = "CREATOR"
	RoleAdmin   Role = "ADMIN"
)

// rolePrefix is the conventional access-control prefix carried by role
// strings inside tokens ("ROLE_ADMIN"). Tokens may carry roles with or
// without it.
const rolePrefix = "ROLE_"

var knownRoles = map[string]Role{
	rolePrefix + string(RoleViewer):  RoleViewer,
	rolePrefix + string(RoleCreator): RoleCreator,
	rolePrefix + string(RoleAdmin):   RoleAdmin,
}

// NormalizeRole prepends the conventional prefix when missing.
// Idempotent: NormalizeRole(NormalizeRole(x)) == NormalizeRole(x).
func NormalizeRole(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, rolePrefix) {
		return s
	}
	return rolePrefix + s
}

// Principal is the resolved identity of the caller for one request.
// It is owned by that request's context and never shared or persisted.
type Principal struct {
	UserID int
	Email  string
	Roles  map[Role]struct{}
}

// ResolvePrincipal maps verified claims to a Principal. Unknown role strings
// are dropped rather than rejected; a principal may end up with an empty
// role set, which policy checks treat as "no access", not as an error.
// Pure function of the claims.
func ResolvePrincipal(c Claims) Principal {
	p := Principal{
		UserID: c.UserID,
		Email:  c.Subject,
		Roles:  make(map[Role]struct{}, len(c.Roles)),
	}
	for _, raw := range c.Roles {
		if role, ok := knownRoles[NormalizeRole(raw)]; ok {
			p.Roles[role] = struct{}{}
		}
	}
	return p
}

func (p Principal) HasRole(r Role) bool {
	_, ok := p.Roles[r]
	return ok
}

func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool { return p.HasRole(RoleAdmin) }
