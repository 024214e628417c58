package auth

import "testing"

func TestNormalizeRoleIdempotent(t *testing.T) {
	cases := map[string]string{
		"ADMIN":       "ROLE_ADMIN",
		"ROLE_ADMIN":  "ROLE_ADMIN",
		"  CREATOR ":  "ROLE_CREATOR",
		"ROLE_VIEWER": "ROLE_VIEWER",
	}
	for in, want := range cases {
		got := NormalizeRole(in)
		if got != want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", in, got, want)
		}
		if again := NormalizeRole(got); again != got {
			t.Fatalf("not idempotent: NormalizeRole(%q) = %q", got, again)
		}
	}
}

func TestResolvePrincipal(t *testing.T) {
	c := Claims{
		UserID: 7,
		Roles:  []string{"ADMIN", "ROLE_CREATOR", "ROLE_SUPERUSER", "banana"},
	}
	c.Subject = "admin@example.com"

	p := ResolvePrincipal(c)
	if p.UserID != 7 || p.Email != "admin@example.com" {
		t.Fatalf("identity not carried: %+v", p)
	}
	if !p.HasRole(RoleAdmin) || !p.HasRole(RoleCreator) {
		t.Fatalf("known roles missing: %+v", p.Roles)
	}
	if len(p.Roles) != 2 {
		t.Fatalf("unknown roles must be dropped, got %+v", p.Roles)
	}
	if !p.IsAdmin() {
		t.Fatalf("IsAdmin should be true")
	}
}

func TestResolvePrincipalEmptyRoles(t *testing.T) {
	p := ResolvePrincipal(Claims{UserID: 1})
	if len(p.Roles) != 0 {
		t.Fatalf("expected empty role set, got %+v", p.Roles)
	}
	if p.HasAnyRole(RoleViewer, RoleCreator, RoleAdmin) {
		t.Fatalf("empty role set must not match any role")
	}
}
