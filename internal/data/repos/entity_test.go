package repos

import (
	"context"
	"testing"

	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func TestEntityListFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewEntityRepo(db, testutil.Logger(t))

	creator := testutil.SeedContributor(t, ctx, db, "author@example.com")
	draft := testutil.SeedState(t, ctx, db, "draft", 1, true)
	review := testutil.SeedState(t, ctx, db, "review", 2, false)

	guide := testutil.SeedEntity(t, ctx, db, draft.ID, creator.ID)
	if err := repo.Update(ctx, nil, guide.ID, map[string]any{"name": "Style Guide", "type": "guide"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	article := testutil.SeedEntity(t, ctx, db, review.ID, creator.ID)
	if err := repo.Update(ctx, nil, article.ID, map[string]any{"name": "Feature Article", "priority": types.PriorityHigh}); err != nil {
		t.Fatalf("update: %v", err)
	}

	results, total, err := repo.List(ctx, nil, EntityFilter{Type: "guide"})
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if total != 1 || len(results) != 1 || results[0].ID != guide.ID {
		t.Fatalf("type filter returned the wrong rows: total=%d", total)
	}

	results, total, err = repo.List(ctx, nil, EntityFilter{StateID: review.ID})
	if err != nil {
		t.Fatalf("list by state: %v", err)
	}
	if total != 1 || results[0].ID != article.ID {
		t.Fatalf("state filter returned the wrong rows: total=%d", total)
	}

	// Search is case-insensitive over name and description.
	results, total, err = repo.List(ctx, nil, EntityFilter{Search: "style"})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if total != 1 || results[0].ID != guide.ID {
		t.Fatalf("search returned the wrong rows: total=%d", total)
	}

	_, total, err = repo.List(ctx, nil, EntityFilter{Priority: types.PriorityHigh})
	if err != nil {
		t.Fatalf("list by priority: %v", err)
	}
	if total != 1 {
		t.Fatalf("priority filter returned %d rows", total)
	}
}

func TestEntityListPaginates(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewEntityRepo(db, testutil.Logger(t))

	creator := testutil.SeedContributor(t, ctx, db, "author@example.com")
	draft := testutil.SeedState(t, ctx, db, "draft", 1, true)
	for i := 0; i < 5; i++ {
		testutil.SeedEntity(t, ctx, db, draft.ID, creator.ID)
	}

	results, total, err := repo.List(ctx, nil, EntityFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 rows on page 2, got %d", len(results))
	}

	results, _, err = repo.List(ctx, nil, EntityFilter{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 row on the last page, got %d", len(results))
	}
}

func TestEntityReassignCreatorIncludesSoftDeleted(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewEntityRepo(db, testutil.Logger(t))

	leaver := testutil.SeedContributor(t, ctx, db, "leaver@example.com")
	heir := testutil.SeedContributor(t, ctx, db, "heir@example.com")
	draft := testutil.SeedState(t, ctx, db, "draft", 1, true)

	kept := testutil.SeedEntity(t, ctx, db, draft.ID, leaver.ID)
	gone := testutil.SeedEntity(t, ctx, db, draft.ID, leaver.ID)
	if err := repo.SoftDelete(ctx, nil, gone.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if err := repo.ReassignCreator(ctx, nil, leaver.ID, heir.ID); err != nil {
		t.Fatalf("reassign creator: %v", err)
	}

	reloaded, err := repo.GetByID(ctx, nil, kept.ID)
	if err != nil {
		t.Fatalf("reload kept entity: %v", err)
	}
	if reloaded.CreatedBy != heir.ID {
		t.Fatal("live entity was not reassigned")
	}

	var deleted types.Entity
	if err := db.Unscoped().Where("id = ?", gone.ID).First(&deleted).Error; err != nil {
		t.Fatalf("reload soft-deleted entity: %v", err)
	}
	if deleted.CreatedBy != heir.ID {
		t.Fatal("soft-deleted entity was not reassigned")
	}
}
