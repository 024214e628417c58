package authz

import (
	"context"
	"strings"
	"time"

	"mediaflow/internal/auth"

	"github.com/gin-gonic/gin"
)

// Rule is one declarative policy entry.
//
// Semantics:
//   - Public: no authentication required.
//   - len(Roles) > 0: caller must hold at least one of the roles.
//   - otherwise: any authenticated caller.
//
// Pattern is an exact path, or a prefix pattern ending in "/**" that matches
// the prefix itself and anything below it. An empty Method matches every
// method.
type Rule struct {
	Method  string
	Pattern string
	Roles   []auth.Role
	Public  bool

	// Note marks temporary exceptions so they are visible in one place
	// instead of scattered through handler code.
	Note string
}

const wildcardSuffix = "/**"

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, wildcardSuffix); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// specificity orders candidate rules: exact patterns beat wildcards, longer
// prefixes beat shorter ones, and a method-specific rule beats a catch-all
// method. Ties go to the earliest rule, so reversible exceptions are
// prepended where they must win.
func (r Rule) specificity() int {
	s := len(strings.TrimSuffix(r.Pattern, wildcardSuffix)) * 4
	if !strings.HasSuffix(r.Pattern, wildcardSuffix) {
		s += 2048
	}
	if r.Method != "" {
		s++
	}
	return s
}

// Table is the ordered policy table for the REST surface, evaluated before
// any handler runs.
type Table struct {
	rules []Rule
}

func NewTable(rules ...Rule) *Table {
	return &Table{rules: rules}
}

// Match returns the most specific rule for (method, path).
func (t *Table) Match(method, path string) (Rule, bool) {
	best := Rule{}
	bestScore := -1
	found := false
	for _, r := range t.rules {
		if !r.matches(method, path) {
			continue
		}
		if score := r.specificity(); score > bestScore {
			best = r
			bestScore = score
			found = true
		}
	}
	return best, found
}

// Decide evaluates the table against the request identity. nil means allow;
// a non-nil result is always a *Error. Requests matching no rule require
// authentication, mirroring a default-deny posture for unknown paths.
func (t *Table) Decide(ctx context.Context, method, path string) error {
	rule, ok := t.Match(method, path)
	if !ok {
		rule = Rule{}
	}
	return decide(ctx, rule.Public, rule.Roles)
}

func decide(ctx context.Context, public bool, roles []auth.Role) error {
	if public {
		return nil
	}
	p, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return Unauthorized("")
	}
	if len(roles) == 0 {
		return nil
	}
	if !p.HasAnyRole(roles...) {
		return Forbidden("")
	}
	return nil
}

// Middleware enforces the table on the gin pipeline. Install after the
// authentication gate; it writes the denial body itself and aborts.
func (t *Table) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := t.Decide(c.Request.Context(), c.Request.Method, c.Request.URL.Path); err != nil {
			ae, ok := err.(*Error)
			if !ok {
				ae = Forbidden("")
			}
			c.AbortWithStatusJSON(ae.HTTPStatus(), gin.H{
				"code":      string(ae.Code),
				"message":   ae.Message,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		c.Next()
	}
}

// OperationTable is the policy table for the query surface, keyed by
// operation (field) name instead of method+path. Operations missing from
// the table are denied: every exposed operation needs an explicit entry.
type OperationTable struct {
	ops    map[string][]auth.Role
	public map[string]struct{}
}

func NewOperationTable() *OperationTable {
	return &OperationTable{
		ops:    make(map[string][]auth.Role),
		public: make(map[string]struct{}),
	}
}

func (t *OperationTable) Require(operation string, roles ...auth.Role) *OperationTable {
	t.ops[operation] = roles
	return t
}

func (t *OperationTable) Allow(operation string) *OperationTable {
	t.public[operation] = struct{}{}
	return t
}

// Decide evaluates one operation against the request identity.
func (t *OperationTable) Decide(ctx context.Context, operation string) error {
	if _, ok := t.public[operation]; ok {
		return nil
	}
	roles, ok := t.ops[operation]
	if !ok {
		// Unregistered operation: deny, distinguishing the two categories.
		if _, authed := auth.PrincipalFrom(ctx); !authed {
			return Unauthorized("")
		}
		return Forbidden("")
	}
	return decide(ctx, false, roles)
}
