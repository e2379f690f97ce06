package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
)

func TestVersionMaxNumber(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewVersionRepo(db, testutil.Logger(t))

	creator := testutil.SeedContributor(t, ctx, db, "author@example.com")
	state := testutil.SeedState(t, ctx, db, "draft", 1, true)
	entity := testutil.SeedEntity(t, ctx, db, state.ID, creator.ID)

	max, err := repo.MaxNumber(ctx, nil, entity.ID)
	if err != nil {
		t.Fatalf("max number on empty entity: %v", err)
	}
	if max != 0 {
		t.Fatalf("expected 0 for entity without versions, got %d", max)
	}

	testutil.SeedVersion(t, ctx, db, entity.ID, creator.ID, 1, false)
	testutil.SeedVersion(t, ctx, db, entity.ID, creator.ID, 2, false)
	testutil.SeedVersion(t, ctx, db, entity.ID, creator.ID, 5, true)

	max, err = repo.MaxNumber(ctx, nil, entity.ID)
	if err != nil {
		t.Fatalf("max number: %v", err)
	}
	if max != 5 {
		t.Fatalf("expected max 5, got %d", max)
	}

	// Other entities do not leak into the aggregate.
	other := testutil.SeedEntity(t, ctx, db, state.ID, creator.ID)
	max, err = repo.MaxNumber(ctx, nil, other.ID)
	if err != nil {
		t.Fatalf("max number for other entity: %v", err)
	}
	if max != 0 {
		t.Fatalf("expected 0 for other entity, got %d", max)
	}
}

func TestVersionUnsetCurrentOnlyTouchesOneEntity(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewVersionRepo(db, testutil.Logger(t))

	creator := testutil.SeedContributor(t, ctx, db, "author@example.com")
	state := testutil.SeedState(t, ctx, db, "draft", 1, true)
	entity := testutil.SeedEntity(t, ctx, db, state.ID, creator.ID)
	other := testutil.SeedEntity(t, ctx, db, state.ID, creator.ID)

	v1 := testutil.SeedVersion(t, ctx, db, entity.ID, creator.ID, 1, true)
	ov1 := testutil.SeedVersion(t, ctx, db, other.ID, creator.ID, 1, true)

	if err := repo.UnsetCurrent(ctx, nil, entity.ID); err != nil {
		t.Fatalf("unset current: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, v1.ID)
	if err != nil {
		t.Fatalf("reload version: %v", err)
	}
	if got.IsCurrent {
		t.Fatal("expected version to be demoted")
	}

	untouched, err := repo.GetByID(ctx, nil, ov1.ID)
	if err != nil {
		t.Fatalf("reload other version: %v", err)
	}
	if !untouched.IsCurrent {
		t.Fatal("other entity's current version must not be demoted")
	}
}

func TestVersionReassignCreator(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewVersionRepo(db, testutil.Logger(t))

	leaver := testutil.SeedContributor(t, ctx, db, "leaver@example.com")
	heir := testutil.SeedContributor(t, ctx, db, "heir@example.com")
	state := testutil.SeedState(t, ctx, db, "draft", 1, true)
	entity := testutil.SeedEntity(t, ctx, db, state.ID, leaver.ID)
	testutil.SeedVersion(t, ctx, db, entity.ID, leaver.ID, 1, false)
	testutil.SeedVersion(t, ctx, db, entity.ID, leaver.ID, 2, true)

	if err := repo.ReassignCreator(ctx, nil, leaver.ID, heir.ID); err != nil {
		t.Fatalf("reassign creator: %v", err)
	}

	n, err := repo.CountByCreator(ctx, nil, heir.ID)
	if err != nil {
		t.Fatalf("count by creator: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 versions for heir, got %d", n)
	}
	n, err = repo.CountByCreator(ctx, nil, leaver.ID)
	if err != nil {
		t.Fatalf("count by creator: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 versions left for leaver, got %d", n)
	}
}

func TestVersionGetByIDMissing(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewVersionRepo(db, testutil.Logger(t))

	if _, err := repo.GetByID(ctx, nil, uuid.New()); err == nil {
		t.Fatal("expected an error for an unknown version")
	}
}
