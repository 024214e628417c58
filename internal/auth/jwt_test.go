package auth

import (
	"errors"
	"testing"
	"time"

	"mediaflow/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

func testManager(t *testing.T, cfg config.AuthConfig) *Manager {
	t.Helper()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "secret"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := testManager(t, config.AuthConfig{JWTIssuer: "mediaflow", JWTAudience: "api"})

	now := time.Unix(1700000000, 0).UTC()
	token, err := m.Issue(now, 42, "creator@example.com", []string{"ROLE_CREATOR", "VIEWER"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || claims.Subject != "creator@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Roles) != 2 {
		t.Fatalf("roles not carried: %+v", claims.Roles)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := testManager(t, config.AuthConfig{TokenTTL: time.Minute})

	now := time.Unix(1700000000, 0).UTC()
	token, err := m.Issue(now, 1, "a@b.c", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(token, now.Add(2*time.Minute)); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestVerifyExpiredWithinLeeway(t *testing.T) {
	m := testManager(t, config.AuthConfig{TokenTTL: time.Minute, ClockSkew: 2 * time.Minute})

	now := time.Unix(1700000000, 0).UTC()
	token, err := m.Issue(now, 1, "a@b.c", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// 90s past expiry but inside the configured leeway.
	if _, err := m.Verify(token, now.Add(time.Minute+90*time.Second)); err != nil {
		t.Fatalf("leeway not applied: %v", err)
	}
}

func TestVerifyBadSignature(t *testing.T) {
	issuer := testManager(t, config.AuthConfig{JWTSecret: "other-secret"})
	m := testManager(t, config.AuthConfig{})

	now := time.Now()
	token, err := issuer.Issue(now, 1, "a@b.c", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(token, now); !errors.Is(err, ErrTokenBadSignature) {
		t.Fatalf("want ErrTokenBadSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := testManager(t, config.AuthConfig{})

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Verify(tok, time.Now()); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: want ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestVerifyRejectsMissingIdentity(t *testing.T) {
	m := testManager(t, config.AuthConfig{})

	// Signed and unexpired but without a user id claim.
	now := time.Now()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "a@b.c",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	token, err := raw.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Verify(token, now); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("want ErrTokenMalformed, got %v", err)
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	issuer := testManager(t, config.AuthConfig{JWTIssuer: "someone-else"})
	m := testManager(t, config.AuthConfig{JWTIssuer: "mediaflow"})

	now := time.Now()
	token, err := issuer.Issue(now, 1, "a@b.c", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token, now); err == nil {
		t.Fatalf("expected issuer mismatch rejection")
	}
}
