package auth

import "context"

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the account summary in the given context
func WithContext(r context.Context, user *UserSummary) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the account summary from the context.
func FromContext(ctx context.Context) (*UserSummary, bool) {
	raw, ok := ctx.Value(userCtxKey).(*UserSummary)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// CanViewSheet reports whether the identity carried in the context may see
// the sheet. A context without an identity sees nothing.
func CanViewSheet(ctx context.Context, sheet *Sheet) bool {
	summary, ok := FromContext(ctx)
	if !ok || summary == nil {
		return false
	}

	user := &User{
		Role:       summary.Role,
		IsPremium:  summary.IsPremium,
		IsVerified: summary.IsVerified,
	}

	return ResolveSheetFilter(user, "", "").Matches(sheet)
}
