package authz

import (
	"context"
	"testing"

	"mediaflow/internal/auth"
)

func TestCanAccess(t *testing.T) {
	cases := []struct {
		name    string
		ctx     context.Context
		ownerID int
		want    bool
	}{
		{"anonymous", context.Background(), 1, false},
		{"owner", principalCtx(1, auth.RoleViewer), 1, true},
		{"non-owner", principalCtx(2, auth.RoleCreator), 1, false},
		{"admin non-owner", principalCtx(99, auth.RoleAdmin), 1, true},
		{"no roles but owner", principalCtx(1), 1, true},
	}
	for _, tc := range cases {
		if got := CanAccess(tc.ctx, tc.ownerID); got != tc.want {
			t.Fatalf("%s: CanAccess = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	if code := denialCode(t, RequireOwnerOrAdmin(context.Background(), 1)); code != CodeUnauthorized {
		t.Fatalf("anonymous: want UNAUTHORIZED, got %v", code)
	}
	if code := denialCode(t, RequireOwnerOrAdmin(principalCtx(2), 1)); code != CodeForbidden {
		t.Fatalf("non-owner: want FORBIDDEN, got %v", code)
	}
	if err := RequireOwnerOrAdmin(principalCtx(1), 1); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if err := RequireOwnerOrAdmin(principalCtx(3, auth.RoleAdmin), 1); err != nil {
		t.Fatalf("admin: %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	if code := denialCode(t, RequireRole(context.Background(), auth.RoleViewer)); code != CodeUnauthorized {
		t.Fatalf("anonymous: want UNAUTHORIZED, got %v", code)
	}
	if code := denialCode(t, RequireRole(principalCtx(1, auth.RoleViewer), auth.RoleAdmin)); code != CodeForbidden {
		t.Fatalf("missing role: want FORBIDDEN, got %v", code)
	}
	if err := RequireRole(principalCtx(1, auth.RoleCreator), auth.RoleCreator, auth.RoleAdmin); err != nil {
		t.Fatalf("role held: %v", err)
	}
}
