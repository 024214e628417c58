package auth

import (
	"context"
	"testing"
	"time"

	"mediaflow/internal/config"
)

func testGate(t *testing.T) (*Gate, *Manager, time.Time) {
	t.Helper()
	m := testManager(t, config.AuthConfig{})
	now := time.Unix(1700000000, 0).UTC()
	g := NewGate(m, nil)
	g.now = func() time.Time { return now }
	return g, m, now
}

func TestGateNoHeaderStaysAnonymous(t *testing.T) {
	g, _, _ := testGate(t)

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "bearer lowercase-scheme", "Token abc"} {
		ctx := g.Authenticate(context.Background(), header)
		if _, ok := PrincipalFrom(ctx); ok {
			t.Fatalf("header %q must not authenticate", header)
		}
	}
}

func TestGateInvalidTokenStaysAnonymous(t *testing.T) {
	g, m, now := testGate(t)

	expired, err := m.Issue(now.Add(-2*time.Hour), 5, "a@b.c", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, header := range []string{"Bearer garbage", "Bearer " + expired} {
		ctx := g.Authenticate(context.Background(), header)
		if _, ok := PrincipalFrom(ctx); ok {
			t.Fatalf("header %q must degrade to anonymous", header)
		}
	}
}

func TestGateValidToken(t *testing.T) {
	g, m, now := testGate(t)

	token, err := m.Issue(now, 9, "creator@example.com", []string{"CREATOR"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ctx := g.Authenticate(context.Background(), "Bearer "+token)
	p, ok := PrincipalFrom(ctx)
	if !ok {
		t.Fatalf("expected principal")
	}
	if p.UserID != 9 || !p.HasRole(RoleCreator) {
		t.Fatalf("unexpected principal: %+v", p)
	}

	uid, err := CurrentUserID(ctx)
	if err != nil || uid != 9 {
		t.Fatalf("CurrentUserID = %d, %v", uid, err)
	}
}

func TestGateIdempotent(t *testing.T) {
	g, m, now := testGate(t)

	first, err := m.Issue(now, 1, "first@example.com", []string{"ADMIN"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := m.Issue(now, 2, "second@example.com", []string{"VIEWER"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ctx := g.Authenticate(context.Background(), "Bearer "+first)
	ctx = g.Authenticate(ctx, "Bearer "+second)

	p, ok := PrincipalFrom(ctx)
	if !ok || p.UserID != 1 {
		t.Fatalf("established identity must not be overwritten, got %+v", p)
	}
}

func TestGateNeverRevertsToAnonymous(t *testing.T) {
	g, m, now := testGate(t)

	token, err := m.Issue(now, 3, "a@b.c", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ctx := g.Authenticate(context.Background(), "Bearer "+token)
	ctx = g.Authenticate(ctx, "Bearer garbage")

	if _, ok := PrincipalFrom(ctx); !ok {
		t.Fatalf("a later bad token must not clear identity")
	}
}
