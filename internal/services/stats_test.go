package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func newStatsService(t *testing.T, env *testEnv) StatsService {
	t.Helper()
	log := testutil.Logger(t)
	return NewStatsService(env.db, log, env.entityRepo, env.versionRepo, env.fileRepo, env.historyRepo, env.contribRepo, env.stateRepo, nil)
}

func TestDashboardCountsAndStateBreakdown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	stats := newStatsService(t, env)

	first, err := env.entities.Create(ctx, creator.ID, EntityInput{Name: "One"})
	require.NoError(t, err)
	_, err = env.entities.Create(ctx, creator.ID, EntityInput{Name: "Two"})
	require.NoError(t, err)

	submitted, err := env.stateRepo.GetByName(ctx, nil, "submitted")
	require.NoError(t, err)
	_, err = env.entities.ChangeState(ctx, creator.ID, first.ID, submitted.ID, "")
	require.NoError(t, err)

	dashboard, err := stats.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), dashboard.TotalEntities)
	require.Equal(t, int64(2), dashboard.TotalVersions)
	require.Equal(t, int64(1), dashboard.ActiveContributors)
	require.Equal(t, int64(2), dashboard.CreatedLast7Days)

	// Every seeded state shows up, including the empty ones.
	require.Len(t, dashboard.ByState, 6)
	byName := map[string]int64{}
	for _, b := range dashboard.ByState {
		byName[b.State.Name] = b.Count
	}
	require.Equal(t, int64(1), byName["draft"])
	require.Equal(t, int64(1), byName["submitted"])
	require.Equal(t, int64(0), byName["published"])
}

func TestActivityReportBucketsAndRanks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	stats := newStatsService(t, env)

	entity, err := env.entities.Create(ctx, creator.ID, EntityInput{Name: "Doc"})
	require.NoError(t, err)
	_, err = env.versions.Create(ctx, creator.ID, entity.ID, VersionInput{Content: "v2"})
	require.NoError(t, err)

	report, err := stats.Activity(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 30, report.Days)
	require.NotEmpty(t, report.DailyActivity)
	require.NotEmpty(t, report.DailyCreated)
	require.Len(t, report.TopActors, 1)
	require.Equal(t, creator.ID, report.TopActors[0].Contributor.ID)
	require.Equal(t, int64(2), report.TopActors[0].Count)
}

func TestEntityStatsFootprint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	stats := newStatsService(t, env)

	entity, err := env.entities.Create(ctx, creator.ID, EntityInput{Name: "Doc"})
	require.NoError(t, err)
	_, err = env.versions.Create(ctx, creator.ID, entity.ID, VersionInput{Content: "v2"})
	require.NoError(t, err)

	submitted, err := env.stateRepo.GetByName(ctx, nil, "submitted")
	require.NoError(t, err)
	_, err = env.entities.ChangeState(ctx, creator.ID, entity.ID, submitted.ID, "")
	require.NoError(t, err)

	footprint, err := stats.Entity(ctx, entity.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), footprint.Versions)
	require.Equal(t, int64(0), footprint.Files)
	require.Equal(t, int64(1), footprint.StateChanges)
	require.NotNil(t, footprint.CurrentState)
	require.Equal(t, "submitted", footprint.CurrentState.Name)
	require.GreaterOrEqual(t, footprint.InCurrentStateSeconds, 0.0)

	_, err = stats.Entity(ctx, uuid.New())
	require.ErrorIs(t, err, types.ErrNotFound)
}
