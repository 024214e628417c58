package authz

import "net/http"

// Code is the stable machine-readable denial category. Callers must be able
// to distinguish "not authenticated" from "authenticated but forbidden" on
// both API surfaces.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
)

// Error is a typed authorization denial. Handlers propagate it instead of
// re-checking; transport code maps it to 401/403 or to a GraphQL error with
// the code in extensions. The message never includes token internals.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) HTTPStatus() int {
	if e.Code == CodeUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// Extensions surfaces the denial code on the GraphQL surface
// (gqlerrors.ExtendedError is satisfied structurally).
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "insufficient permissions"
	}
	return &Error{Code: CodeForbidden, Message: msg}
}
