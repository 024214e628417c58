package httpapi

import (
	"mediaflow/internal/auth"
	"mediaflow/internal/authz"
)

// DefaultPolicyTable declares access for the whole REST surface in one
// place. Handlers never re-check roles; route-level access lives here and
// per-row ownership lives in the services.
//
// Catalog reads require a catalog role; content mutations require
// CREATOR or ADMIN, with ownership as the additional per-row check.
// Paths outside these rules fall back to authenticated-only.
func DefaultPolicyTable(devPublicContentCreate bool) *authz.Table {
	catalogRoles := []auth.Role{auth.RoleViewer, auth.RoleCreator, auth.RoleAdmin}
	contentWriters := []auth.Role{auth.RoleCreator, auth.RoleAdmin}

	rules := []authz.Rule{
		{Pattern: "/healthz", Public: true},
		{Method: "POST", Pattern: "/api/v1/auth/token", Public: true},
		// The endpoint is open; per-operation rules are enforced inside the
		// query engine.
		{Method: "POST", Pattern: "/graphql", Public: true},

		{Method: "GET", Pattern: "/api/v1/contents/**", Roles: catalogRoles},
		{Method: "GET", Pattern: "/api/v1/categories/**", Roles: catalogRoles},
		{Method: "GET", Pattern: "/api/v1/playlists/public", Roles: catalogRoles},

		{Method: "POST", Pattern: "/api/v1/contents/**", Roles: contentWriters},
		{Method: "PUT", Pattern: "/api/v1/contents/**", Roles: contentWriters},
		{Method: "DELETE", Pattern: "/api/v1/contents/**", Roles: contentWriters},

		{Method: "POST", Pattern: "/api/v1/categories", Roles: []auth.Role{auth.RoleAdmin}},
		{Method: "PUT", Pattern: "/api/v1/categories/**", Roles: []auth.Role{auth.RoleAdmin}},
		{Method: "DELETE", Pattern: "/api/v1/categories/**", Roles: []auth.Role{auth.RoleAdmin}},

		// Everything else under the API requires authentication; ownership
		// checks run in the services.
		{Pattern: "/api/v1/**"},
	}

	if devPublicContentCreate {
		// TODO: remove once integration environments issue their own tokens.
		// Exact pattern, so it beats the wildcard role rule for this one
		// route and nothing else.
		rules = append([]authz.Rule{{
			Method:  "POST",
			Pattern: "/api/v1/contents",
			Public:  true,
			Note:    "TEMPORARY: anonymous content creation for integration testing",
		}}, rules...)
	}

	return authz.NewTable(rules...)
}
