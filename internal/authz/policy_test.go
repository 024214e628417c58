package authz

import (
	"context"
	"errors"
	"testing"

	"mediaflow/internal/auth"
)

func principalCtx(userID int, roles ...auth.Role) context.Context {
	p := auth.Principal{UserID: userID, Roles: make(map[auth.Role]struct{}, len(roles))}
	for _, r := range roles {
		p.Roles[r] = struct{}{}
	}
	return auth.WithPrincipal(context.Background(), p)
}

func denialCode(t *testing.T, err error) Code {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("want *Error, got %v", err)
	}
	return e.Code
}

func TestMatchMostSpecificWins(t *testing.T) {
	table := NewTable(
		Rule{Method: "GET", Pattern: "/api/v1/contents/**", Public: true},
		Rule{Method: "GET", Pattern: "/api/v1/contents/my-contents/**"},
		Rule{Pattern: "/api/v1/**"},
	)

	r, ok := table.Match("GET", "/api/v1/contents/5")
	if !ok || !r.Public {
		t.Fatalf("wildcard read rule should match, got %+v ok=%v", r, ok)
	}

	r, ok = table.Match("GET", "/api/v1/contents/my-contents")
	if !ok || r.Public {
		t.Fatalf("longer prefix must beat shorter, got %+v", r)
	}

	r, ok = table.Match("GET", "/api/v1/contents/my-contents/type/VIDEO")
	if !ok || r.Public {
		t.Fatalf("longer prefix must beat shorter below it too, got %+v", r)
	}

	r, ok = table.Match("PUT", "/api/v1/contents/5")
	if !ok || r.Pattern != "/api/v1/**" {
		t.Fatalf("method-mismatched rules must not match, got %+v", r)
	}
}

func TestMatchExactBeatsWildcard(t *testing.T) {
	table := NewTable(
		Rule{Method: "GET", Pattern: "/api/v1/playlists/**"},
		Rule{Method: "GET", Pattern: "/api/v1/playlists/public", Public: true},
	)
	r, ok := table.Match("GET", "/api/v1/playlists/public")
	if !ok || !r.Public {
		t.Fatalf("exact pattern must win, got %+v", r)
	}
}

func TestMatchTieGoesToEarliestRule(t *testing.T) {
	table := NewTable(
		Rule{Method: "POST", Pattern: "/api/v1/contents", Public: true, Note: "temporary"},
		Rule{Method: "POST", Pattern: "/api/v1/contents", Roles: []auth.Role{auth.RoleCreator}},
	)
	r, _ := table.Match("POST", "/api/v1/contents")
	if !r.Public {
		t.Fatalf("prepended exception must win the tie, got %+v", r)
	}
}

func TestDecidePublic(t *testing.T) {
	table := NewTable(Rule{Pattern: "/healthz", Public: true})
	if err := table.Decide(context.Background(), "GET", "/healthz"); err != nil {
		t.Fatalf("public path must allow anonymous: %v", err)
	}
}

func TestDecideAnonymousVsForbidden(t *testing.T) {
	table := NewTable(
		Rule{Method: "POST", Pattern: "/api/v1/contents", Roles: []auth.Role{auth.RoleCreator, auth.RoleAdmin}},
	)

	err := table.Decide(context.Background(), "POST", "/api/v1/contents")
	if denialCode(t, err) != CodeUnauthorized {
		t.Fatalf("anonymous caller must get UNAUTHORIZED, got %v", err)
	}

	err = table.Decide(principalCtx(1, auth.RoleViewer), "POST", "/api/v1/contents")
	if denialCode(t, err) != CodeForbidden {
		t.Fatalf("wrong role must get FORBIDDEN, got %v", err)
	}

	if err := table.Decide(principalCtx(1, auth.RoleCreator), "POST", "/api/v1/contents"); err != nil {
		t.Fatalf("creator must pass: %v", err)
	}
	if err := table.Decide(principalCtx(2, auth.RoleAdmin), "POST", "/api/v1/contents"); err != nil {
		t.Fatalf("admin must pass: %v", err)
	}
}

func TestDecideUnmatchedPathRequiresAuth(t *testing.T) {
	table := NewTable()

	err := table.Decide(context.Background(), "GET", "/api/v2/unknown")
	if denialCode(t, err) != CodeUnauthorized {
		t.Fatalf("unknown path anonymous must be UNAUTHORIZED, got %v", err)
	}
	if err := table.Decide(principalCtx(1, auth.RoleViewer), "GET", "/api/v2/unknown"); err != nil {
		t.Fatalf("unknown path with identity passes the default rule: %v", err)
	}
}

func TestOperationTable(t *testing.T) {
	ops := NewOperationTable()
	ops.Allow("allContents")
	ops.Require("myContents")
	ops.Require("createContent", auth.RoleCreator, auth.RoleAdmin)

	if err := ops.Decide(context.Background(), "allContents"); err != nil {
		t.Fatalf("public operation: %v", err)
	}

	if denialCode(t, ops.Decide(context.Background(), "myContents")) != CodeUnauthorized {
		t.Fatalf("anonymous must be UNAUTHORIZED")
	}
	if err := ops.Decide(principalCtx(1, auth.RoleViewer), "myContents"); err != nil {
		t.Fatalf("any authenticated caller may call myContents: %v", err)
	}

	if denialCode(t, ops.Decide(principalCtx(1, auth.RoleViewer), "createContent")) != CodeForbidden {
		t.Fatalf("viewer must be FORBIDDEN on createContent")
	}

	// Unregistered operations fail closed.
	if denialCode(t, ops.Decide(context.Background(), "dropEverything")) != CodeUnauthorized {
		t.Fatalf("unregistered + anonymous must be UNAUTHORIZED")
	}
	if denialCode(t, ops.Decide(principalCtx(1, auth.RoleAdmin), "dropEverything")) != CodeForbidden {
		t.Fatalf("unregistered + authenticated must be FORBIDDEN")
	}
}
