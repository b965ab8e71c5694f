package security

import "context"

type claimsKey struct{}

// WithClaims stores validated token claims on the request context.
func WithClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*UserClaims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the logged-in user, if any. Guests get ok=false.
func UserIDFromContext(ctx context.Context) (int32, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}

// ContextIdentity adapts the context helpers to the booking services' identity lookup.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) (int32, bool) {
	return UserIDFromContext(ctx)
}
