package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func appendEntry(t *testing.T, repo HistoryRepo, entityID, actorID uuid.UUID, action string, at time.Time) *types.HistoryEntry {
	t.Helper()
	entry, err := repo.Append(context.Background(), nil, &types.HistoryEntry{
		ID:          uuid.New(),
		EntityID:    entityID,
		ChangedByID: actorID,
		Action:      action,
		CreatedAt:   at,
	})
	if err != nil {
		t.Fatalf("append %s entry: %v", action, err)
	}
	return entry
}

func TestHistoryListByEntityOrdering(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewHistoryRepo(db, testutil.Logger(t))

	actor := testutil.SeedContributor(t, ctx, db, "actor@example.com")
	state := testutil.SeedState(t, ctx, db, "draft", 1, true)
	entity := testutil.SeedEntity(t, ctx, db, state.ID, actor.ID)

	base := time.Now().Add(-time.Hour)
	appendEntry(t, repo, entity.ID, actor.ID, types.ActionCreated, base)
	appendEntry(t, repo, entity.ID, actor.ID, types.ActionUpdated, base.Add(time.Minute))
	appendEntry(t, repo, entity.ID, actor.ID, types.ActionStateChange, base.Add(2*time.Minute))

	newest, err := repo.ListByEntity(ctx, nil, entity.ID, true, 0)
	if err != nil {
		t.Fatalf("list newest first: %v", err)
	}
	if len(newest) != 3 || newest[0].Action != types.ActionStateChange {
		t.Fatalf("expected newest-first order, got %d entries starting with %q", len(newest), newest[0].Action)
	}

	oldest, err := repo.ListByEntity(ctx, nil, entity.ID, false, 0)
	if err != nil {
		t.Fatalf("list oldest first: %v", err)
	}
	if oldest[0].Action != types.ActionCreated {
		t.Fatalf("expected oldest-first order, got %q first", oldest[0].Action)
	}

	limited, err := repo.ListByEntity(ctx, nil, entity.ID, true, 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(limited))
	}
}

func TestHistoryListStateChangesFiltersActions(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewHistoryRepo(db, testutil.Logger(t))

	actor := testutil.SeedContributor(t, ctx, db, "actor@example.com")
	state := testutil.SeedState(t, ctx, db, "draft", 1, true)
	entity := testutil.SeedEntity(t, ctx, db, state.ID, actor.ID)

	base := time.Now().Add(-time.Hour)
	appendEntry(t, repo, entity.ID, actor.ID, types.ActionCreated, base)
	appendEntry(t, repo, entity.ID, actor.ID, types.ActionStateChange, base.Add(time.Minute))
	appendEntry(t, repo, entity.ID, actor.ID, types.ActionVersionCreated, base.Add(2*time.Minute))
	appendEntry(t, repo, entity.ID, actor.ID, types.ActionStateChange, base.Add(3*time.Minute))

	changes, err := repo.ListStateChanges(ctx, nil, entity.ID)
	if err != nil {
		t.Fatalf("list state changes: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 state changes, got %d", len(changes))
	}
	if !changes[0].CreatedAt.Before(changes[1].CreatedAt) {
		t.Fatal("state changes must come back in chronological order")
	}
}

func TestHistoryTopActors(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewHistoryRepo(db, testutil.Logger(t))

	busy := testutil.SeedContributor(t, ctx, db, "busy@example.com")
	quiet := testutil.SeedContributor(t, ctx, db, "quiet@example.com")
	state := testutil.SeedState(t, ctx, db, "draft", 1, true)
	entity := testutil.SeedEntity(t, ctx, db, state.ID, busy.ID)

	now := time.Now()
	for i := 0; i < 3; i++ {
		appendEntry(t, repo, entity.ID, busy.ID, types.ActionUpdated, now)
	}
	appendEntry(t, repo, entity.ID, quiet.ID, types.ActionUpdated, now)

	actors, err := repo.TopActors(ctx, nil, 5)
	if err != nil {
		t.Fatalf("top actors: %v", err)
	}
	if len(actors) != 2 {
		t.Fatalf("expected 2 actors, got %d", len(actors))
	}
	if actors[0].ContributorID != busy.ID || actors[0].Count != 3 {
		t.Fatalf("expected busy actor first with 3 entries, got %v", actors[0])
	}
}
