package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func TestCreateContributorHashesAndNormalizes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contributor, err := env.contributors.Create(ctx, ContributorInput{
		Name:     "  Marie Dupont ",
		Email:    " Marie@Example.COM ",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "Marie Dupont", contributor.Name)
	require.Equal(t, "marie@example.com", contributor.Email)
	require.Equal(t, types.ContributorRoleContributor, contributor.Role)
	require.True(t, contributor.IsActive)

	// Stored as a bcrypt hash, never plaintext.
	require.NotEqual(t, "s3cret-pass", contributor.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(contributor.Password), []byte("s3cret-pass")))
}

func TestCreateContributorRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []ContributorInput{
		{Email: "a@b.c", Password: "longenough"},                          // missing name
		{Name: "x", Email: "not-an-email", Password: "longenough"},       // invalid email
		{Name: "x", Email: "a@b.c", Password: "short"},                   // short password
		{Name: "x", Email: "a@b.c", Password: "longenough", Role: "god"}, // unknown role
	}
	for _, input := range cases {
		_, err := env.contributors.Create(ctx, input)
		require.ErrorIs(t, err, types.ErrValidation)
	}
}

func TestCreateContributorDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.contributors.Create(ctx, ContributorInput{Name: "First", Email: "dup@example.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = env.contributors.Create(ctx, ContributorInput{Name: "Second", Email: "DUP@example.com", Password: "longenough"})
	require.ErrorIs(t, err, types.ErrConflict)
}

func TestDeleteContributorReassignsEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)

	admin, err := env.contributors.Create(ctx, ContributorInput{
		Name: "Admin", Email: "admin@example.com", Password: "longenough", Role: types.ContributorRoleAdmin,
	})
	require.NoError(t, err)
	leaver, err := env.contributors.Create(ctx, ContributorInput{
		Name: "Leaver", Email: "leaver@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	entity, err := env.entities.Create(ctx, leaver.ID, EntityInput{Name: "Orphan-to-be"})
	require.NoError(t, err)
	_, err = env.versions.Create(ctx, leaver.ID, entity.ID, VersionInput{Content: "v2"})
	require.NoError(t, err)

	require.NoError(t, env.contributors.Delete(ctx, admin.ID, leaver.ID))

	_, err = env.contributors.Get(ctx, leaver.ID)
	require.ErrorIs(t, err, types.ErrNotFound)

	// Everything the account touched now belongs to the acting admin.
	reloaded, err := env.entities.Get(ctx, entity.ID)
	require.NoError(t, err)
	require.Equal(t, admin.ID, reloaded.CreatedBy)
	for _, v := range reloaded.Versions {
		require.Equal(t, admin.ID, v.CreatedByID)
	}
	for _, h := range reloaded.History {
		require.Equal(t, admin.ID, h.ChangedByID)
	}

	// The leaver's owner assignment is gone rather than reassigned.
	for _, a := range reloaded.Assignments {
		require.NotEqual(t, leaver.ID, a.ContributorID)
	}
}

func TestDeleteContributorRefusesSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.SeedContributor(t, ctx, env.db, "admin@example.com")

	err := env.contributors.Delete(ctx, admin.ID, admin.ID)
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestDeleteContributorUnknownTargets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.SeedContributor(t, ctx, env.db, "admin@example.com")

	err := env.contributors.Delete(ctx, admin.ID, uuid.New())
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestResetPasswordReplacesHash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contributor, err := env.contributors.Create(ctx, ContributorInput{
		Name: "Marie", Email: "marie@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	err = env.contributors.ResetPassword(ctx, contributor.ID, "short")
	require.ErrorIs(t, err, types.ErrValidation)
	err = env.contributors.ResetPassword(ctx, uuid.New(), "fresh-pass")
	require.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, env.contributors.ResetPassword(ctx, contributor.ID, "fresh-pass"))

	reloaded, err := env.contributors.Get(ctx, contributor.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(reloaded.Password), []byte("fresh-pass")))
}

func TestContributorStatsCountsAssignmentsAndVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")

	first, err := env.entities.Create(ctx, creator.ID, EntityInput{Name: "One"})
	require.NoError(t, err)
	_, err = env.entities.Create(ctx, creator.ID, EntityInput{Name: "Two"})
	require.NoError(t, err)
	_, err = env.versions.Create(ctx, creator.ID, first.ID, VersionInput{Content: "v2"})
	require.NoError(t, err)

	stats, err := env.contributors.Stats(ctx, creator.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.AssignedEntities)
	require.Equal(t, int64(3), stats.VersionsCreated)
}

func TestListContributorsFiltersByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.contributors.Create(ctx, ContributorInput{
		Name: "Admin", Email: "admin@example.com", Password: "longenough", Role: types.ContributorRoleAdmin,
	})
	require.NoError(t, err)
	_, err = env.contributors.Create(ctx, ContributorInput{
		Name: "Writer", Email: "writer@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	admins, total, err := env.contributors.List(ctx, repos.ContributorFilter{Role: types.ContributorRoleAdmin})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, admins, 1)
	require.Equal(t, "admin@example.com", admins[0].Email)
}
