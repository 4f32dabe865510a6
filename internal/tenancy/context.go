// Package tenancy carries the resolved organization through request
// contexts. The org is always an explicit parameter at the data layer;
// this package only bridges HTTP middleware and handlers.
package tenancy

import "context"

type orgKey struct{}
type userKey struct{}

// WithOrg returns a context carrying the resolved organization id.
func WithOrg(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgKey{}, orgID)
}

// OrgFromContext returns the organization id resolved for this request.
// ok is false when no tenant has been resolved; callers must treat that
// as "do not query anything".
func OrgFromContext(ctx context.Context) (orgID string, ok bool) {
	orgID, ok = ctx.Value(orgKey{}).(string)
	return orgID, ok && orgID != ""
}

// WithUser returns a context carrying the authenticated user's email.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey{}, email)
}

// UserFromContext returns the authenticated user's email, if any.
func UserFromContext(ctx context.Context) (email string, ok bool) {
	email, ok = ctx.Value(userKey{}).(string)
	return email, ok && email != ""
}
