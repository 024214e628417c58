package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for this service.
// Subject carries the user's email; roles are free-form strings normalized
// by the principal resolver before any authorization decision.
// A token's validity window is fixed at issuance and never extended.
type Claims struct {
	jwt.RegisteredClaims

	UserID int      `json:"user_id"`
	Roles  []string `json:"roles"`
}
