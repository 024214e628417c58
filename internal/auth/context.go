package auth

import (
	"context"
	"errors"
)

type ctxKey int

const ctxPrincipal ctxKey = iota

// ErrAnonymous is returned by CurrentUserID when the request carries no
// resolved principal.
var ErrAnonymous = errors.New("no principal in context")

// WithPrincipal attaches a principal to the request context. The context is
// the only identity carrier in the process; there is no global security
// holder, so the "one request, one identity" invariant is structural.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFrom reads the principal for the current request.
// ok is false for anonymous requests.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	return p, ok
}

// CurrentUserID returns the authenticated caller's user id. Handlers use it
// to stamp "created by" fields.
func CurrentUserID(ctx context.Context) (int, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return 0, ErrAnonymous
	}
	return p.UserID, nil
}
