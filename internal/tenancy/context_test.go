package tenancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrgFromContext(t *testing.T) {
	ctx := context.Background()

	_, ok := OrgFromContext(ctx)
	assert.False(t, ok, "empty context should not resolve an org")

	ctx = WithOrg(ctx, "org-123")
	orgID, ok := OrgFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "org-123", orgID)
}

func TestOrgFromContext_EmptyID(t *testing.T) {
	ctx := WithOrg(context.Background(), "")
	_, ok := OrgFromContext(ctx)
	assert.False(t, ok, "blank org id must count as unresolved")
}

func TestUserFromContext(t *testing.T) {
	ctx := WithUser(context.Background(), "ops@acme.com")
	email, ok := UserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ops@acme.com", email)
}
