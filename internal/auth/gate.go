package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// Gate attempts to establish the caller's identity from the Authorization
// header. It is the single authentication behavior shared by both entry
// surfaces (the REST pipeline and the /graphql endpoint); per-surface code
// only decides where the header comes from.
//
// The gate never rejects a request. Missing header, wrong scheme, or any
// token failure leave the request anonymous; policy and ownership checks
// downstream are the enforcement points.
type Gate struct {
	manager *Manager
	log     *slog.Logger

	// now is injectable for deterministic tests.
	now func() time.Time
}

func NewGate(m *Manager, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{manager: m, log: log, now: time.Now}
}

// Authenticate returns a context carrying the resolved principal, or the
// input context unchanged. Idempotent: a context that already holds a
// principal passes through untouched, so re-entrant dispatch cannot
// overwrite an established identity.
func (g *Gate) Authenticate(ctx context.Context, header string) context.Context {
	raw := strings.TrimSpace(header)
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return ctx
	}

	if _, ok := PrincipalFrom(ctx); ok {
		return ctx
	}

	claims, err := g.manager.Verify(strings.TrimPrefix(raw, bearerPrefix), g.now())
	if err != nil {
		// Invalid tokens degrade to anonymous. Documented contract, not an
		// accident: the client sees 401/403 from the policy layer, never a
		// token parse error.
		g.log.Debug("bearer token rejected, continuing anonymous", "err", err)
		return ctx
	}

	return WithPrincipal(ctx, ResolvePrincipal(claims))
}

// Middleware adapts the gate to the gin pipeline. It must be installed
// before any policy middleware so identity is settled before rules run.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := g.Authenticate(c.Request.Context(), c.GetHeader(authorizationHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
