package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func SeedContributor(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Contributor {
	tb.Helper()
	c := &types.Contributor{
		ID:       uuid.New(),
		Name:     "Test Contributor",
		Email:    email,
		Password: "pw",
		Role:     types.ContributorRoleContributor,
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contributor: %v", err)
	}
	return c
}

func SeedState(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, order int, isInitial bool) *types.State {
	tb.Helper()
	s := &types.State{
		ID:        uuid.New(),
		Name:      name,
		Label:     name,
		Color:     "#6B7280",
		Order:     order,
		IsInitial: isInitial,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed state: %v", err)
	}
	return s
}

func SeedEntity(tb testing.TB, ctx context.Context, tx *gorm.DB, stateID, creatorID uuid.UUID) *types.Entity {
	tb.Helper()
	e := &types.Entity{
		ID:             uuid.New(),
		ExternalID:     uuid.New(),
		Name:           "entity",
		Type:           "article",
		Priority:       types.PriorityMedium,
		Tags:           datatypes.JSONSlice[string]{},
		Metadata:       datatypes.JSONMap{},
		CurrentStateID: stateID,
		CreatedBy:      creatorID,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed entity: %v", err)
	}
	return e
}

func SeedVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, entityID, creatorID uuid.UUID, number int, current bool) *types.Version {
	tb.Helper()
	v := &types.Version{
		ID:            uuid.New(),
		EntityID:      entityID,
		VersionNumber: number,
		Title:         "version",
		Content:       "content",
		CreatedByID:   creatorID,
		IsCurrent:     current,
		Metadata:      datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed version: %v", err)
	}
	return v
}
