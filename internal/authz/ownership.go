package authz

import (
	"context"

	"mediaflow/internal/auth"
)

// CanAccess is the resource-level ownership rule: admins may touch any row,
// everyone else only their own. Anonymous callers are never owners.
//
// Callers must resolve the real owner id first; a missing resource is a
// NotFound for the client and this check must not run against a fabricated
// owner id.
func CanAccess(ctx context.Context, ownerID int) bool {
	p, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return p.UserID == ownerID
}

// RequireOwnerOrAdmin raises a typed denial when the caller may not touch a
// resource owned by ownerID: UNAUTHORIZED for anonymous callers, FORBIDDEN
// for authenticated non-owners.
func RequireOwnerOrAdmin(ctx context.Context, ownerID int) error {
	if _, ok := auth.PrincipalFrom(ctx); !ok {
		return Unauthorized("")
	}
	if !CanAccess(ctx, ownerID) {
		return Forbidden("not the owner of this resource")
	}
	return nil
}

// RequireRole raises a typed denial unless the caller holds at least one of
// the given roles. A principal with an empty role set is denied, not erred.
func RequireRole(ctx context.Context, roles ...auth.Role) error {
	p, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return Unauthorized("")
	}
	if !p.HasAnyRole(roles...) {
		return Forbidden("")
	}
	return nil
}
