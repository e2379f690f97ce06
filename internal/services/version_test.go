package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func (env *testEnv) seedEntity(t *testing.T, creatorID uuid.UUID) *types.Entity {
	t.Helper()
	entity, err := env.entities.Create(context.Background(), creatorID, EntityInput{
		Name:    "Handbook",
		Content: "v1 body",
	})
	if err != nil {
		t.Fatalf("seed entity: %v", err)
	}
	return entity
}

func TestCreateVersionNumbersSequentially(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)

	v2, err := env.versions.Create(ctx, creator.ID, entity.ID, VersionInput{Title: "Second", Content: "v2 body"})
	require.NoError(t, err)
	require.Equal(t, 2, v2.VersionNumber)
	require.True(t, v2.IsCurrent)

	v3, err := env.versions.Create(ctx, creator.ID, entity.ID, VersionInput{Title: "Third", Content: "v3 body"})
	require.NoError(t, err)
	require.Equal(t, 3, v3.VersionNumber)

	// Exactly one version stays current.
	versions, err := env.versions.ListByEntity(ctx, entity.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	var current int
	for _, v := range versions {
		if v.IsCurrent {
			current++
			require.Equal(t, 3, v.VersionNumber)
		}
	}
	require.Equal(t, 1, current)

	n, err := env.historyRepo.CountByEntityAction(ctx, nil, entity.ID, types.ActionVersionCreated)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestCreateVersionConcurrentCreatesStaySequential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)

	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := env.versions.Create(ctx, creator.ID, entity.ID, VersionInput{Content: "concurrent body"})
			return err
		})
	}
	require.NoError(t, g.Wait())

	// Both writers land: numbers stay gapless and exactly one version is
	// current, whichever transaction committed last.
	versions, err := env.versions.ListByEntity(ctx, entity.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)

	seen := map[int]bool{}
	var current int
	for _, v := range versions {
		require.False(t, seen[v.VersionNumber])
		seen[v.VersionNumber] = true
		if v.IsCurrent {
			current++
		}
	}
	for n := 1; n <= 3; n++ {
		require.True(t, seen[n])
	}
	require.Equal(t, 1, current)
}

func TestCreateVersionTitleFallsBackToEntityName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)

	version, err := env.versions.Create(ctx, creator.ID, entity.ID, VersionInput{Title: "   ", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, entity.Name, version.Title)
}

func TestRestoreMakesOldVersionCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)

	_, err := env.versions.Create(ctx, creator.ID, entity.ID, VersionInput{Content: "v2 body"})
	require.NoError(t, err)

	v1 := entity.Versions[0]
	restored, err := env.versions.Restore(ctx, creator.ID, entity.ID, v1.ID)
	require.NoError(t, err)
	require.Equal(t, 1, restored.VersionNumber)
	require.True(t, restored.IsCurrent)
	// Restoring re-points, it does not copy.
	require.Equal(t, v1.ID, restored.ID)

	versions, err := env.versions.ListByEntity(ctx, entity.ID)
	require.NoError(t, err)
	for _, v := range versions {
		require.Equal(t, v.VersionNumber == 1, v.IsCurrent)
	}

	n, err := env.historyRepo.CountByEntityAction(ctx, nil, entity.ID, types.ActionVersionRestored)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestRestoreCurrentVersionIsLoggedNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)

	restored, err := env.versions.Restore(ctx, creator.ID, entity.ID, entity.Versions[0].ID)
	require.NoError(t, err)
	require.True(t, restored.IsCurrent)
	require.Equal(t, entity.Versions[0].ID, restored.ID)

	n, err := env.historyRepo.CountByEntityAction(ctx, nil, entity.ID, types.ActionVersionRestored)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestRestoreRejectsForeignAndUnknownVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)
	other := env.seedEntity(t, creator.ID)

	_, err := env.versions.Restore(ctx, creator.ID, entity.ID, other.Versions[0].ID)
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = env.versions.Restore(ctx, creator.ID, entity.ID, uuid.New())
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestCompareReportsChangedFieldsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)

	v2, err := env.versions.Create(ctx, creator.ID, entity.ID, VersionInput{
		Title:   entity.Versions[0].Title,
		Content: "rewritten body",
		Summary: "now with a summary",
	})
	require.NoError(t, err)

	diff, err := env.versions.Compare(ctx, entity.ID, entity.Versions[0].ID, v2.ID)
	require.NoError(t, err)
	require.Equal(t, 1, diff.FromNumber)
	require.Equal(t, 2, diff.ToNumber)
	require.NotContains(t, diff.FieldChanges, "title")
	require.Equal(t, types.FieldChange{Old: "v1 body", New: "rewritten body"}, diff.FieldChanges["content"])
	require.Contains(t, diff.FieldChanges, "summary")
}

func TestCompareRejectsForeignVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)
	other := env.seedEntity(t, creator.ID)

	_, err := env.versions.Compare(ctx, entity.ID, entity.Versions[0].ID, other.Versions[0].ID)
	require.ErrorIs(t, err, types.ErrValidation)
}
