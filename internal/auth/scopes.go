package auth

// OIDC scopes requested on login. Email is required: the org is resolved
// from the token's email domain.
const (
	ScopeOpenID = "openid"
	ScopeEmail  = "email"
)
