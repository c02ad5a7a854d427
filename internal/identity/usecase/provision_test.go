package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrganization_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.CreateOrganization(ctx, CreateOrganizationInput{Name: "Count Ltd."})
	require.NoError(t, err)
	assert.Equal(t, "count-ltd", first.Slug)

	again, err := f.uc.CreateOrganization(ctx, CreateOrganizationInput{Name: "Count Ltd."})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.repo.orgs, 1)
}

func TestProvisionUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org, err := f.uc.CreateOrganization(ctx, CreateOrganizationInput{Name: "Count"})
	require.NoError(t, err)

	out, err := f.uc.ProvisionUser(ctx, ProvisionUserInput{OrgSlug: org.Slug, Email: " A@X.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, "a@x.com", out.User.Email)
	assert.Equal(t, org.ID, out.User.OrgID)
	assert.True(t, out.User.IsActive)
	assert.NotEqual(t, "hunter2", out.User.PasswordHash)
	assert.True(t, f.bcrypt.Verify(out.User.PasswordHash, "hunter2"))

	again, err := f.uc.ProvisionUser(ctx, ProvisionUserInput{OrgSlug: org.Slug, Email: "a@x.com", Password: "other-pass"})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, out.User.ID, again.User.ID)
	assert.Equal(t, out.User.PasswordHash, again.User.PasswordHash)
}

func TestProvisionUser_UnknownOrg(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ProvisionUser(context.Background(), ProvisionUserInput{OrgSlug: "missing", Email: "a@x.com", Password: "hunter2"})
	requireStatus(t, err, http.StatusNotFound)
}
