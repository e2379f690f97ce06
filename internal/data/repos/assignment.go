package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

type AssignmentRepo interface {
	Get(ctx context.Context, tx *gorm.DB, entityID, contributorID uuid.UUID) (*types.EntityContributor, error)
	// Upsert inserts the assignment or, when the pair already exists, updates
	// its role in place. The (entity, contributor) pair stays unique.
	Upsert(ctx context.Context, tx *gorm.DB, assignment *types.EntityContributor) (*types.EntityContributor, error)
	Delete(ctx context.Context, tx *gorm.DB, entityID, contributorID uuid.UUID) (int64, error)
	ListByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.EntityContributor, error)
	CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error)
	CountByContributor(ctx context.Context, tx *gorm.DB, contributorID uuid.UUID) (int64, error)
	DeleteByContributor(ctx context.Context, tx *gorm.DB, contributorID uuid.UUID) error
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (ar *assignmentRepo) Get(ctx context.Context, tx *gorm.DB, entityID, contributorID uuid.UUID) (*types.EntityContributor, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var result types.EntityContributor
	if err := transaction.WithContext(ctx).
		Where("entity_id = ? AND contributor_id = ?", entityID, contributorID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *assignmentRepo) Upsert(ctx context.Context, tx *gorm.DB, assignment *types.EntityContributor) (*types.EntityContributor, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var existing types.EntityContributor
	err := transaction.WithContext(ctx).
		Where("entity_id = ? AND contributor_id = ?", assignment.EntityID, assignment.ContributorID).
		First(&existing).Error
	if err == nil {
		if uErr := transaction.WithContext(ctx).
			Model(&types.EntityContributor{}).
			Where("id = ?", existing.ID).
			Update("role", assignment.Role).Error; uErr != nil {
			return nil, uErr
		}
		existing.Role = assignment.Role
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if cErr := transaction.WithContext(ctx).Create(assignment).Error; cErr != nil {
		return nil, cErr
	}
	return assignment, nil
}

func (ar *assignmentRepo) Delete(ctx context.Context, tx *gorm.DB, entityID, contributorID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	result := transaction.WithContext(ctx).
		Where("entity_id = ? AND contributor_id = ?", entityID, contributorID).
		Delete(&types.EntityContributor{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (ar *assignmentRepo) ListByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.EntityContributor, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.EntityContributor
	if err := transaction.WithContext(ctx).
		Preload("Contributor").
		Where("entity_id = ?", entityID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *assignmentRepo) CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.EntityContributor{}).
		Where("entity_id = ?", entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ar *assignmentRepo) CountByContributor(ctx context.Context, tx *gorm.DB, contributorID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.EntityContributor{}).
		Where("contributor_id = ?", contributorID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ar *assignmentRepo) DeleteByContributor(ctx context.Context, tx *gorm.DB, contributorID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Where("contributor_id = ?", contributorID).
		Delete(&types.EntityContributor{}).Error
}
