package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

type VersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, version *types.Version) (*types.Version, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Version, error)
	GetWithRelations(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Version, error)
	ListByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.Version, error)
	MaxNumber(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int, error)
	UnsetCurrent(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) error
	SetCurrent(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ReassignCreator(ctx context.Context, tx *gorm.DB, from, to uuid.UUID) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error)
	CountByCreator(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID) (int64, error)
}

type versionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVersionRepo(db *gorm.DB, baseLog *logger.Logger) VersionRepo {
	repoLog := baseLog.With("repo", "VersionRepo")
	return &versionRepo{db: db, log: repoLog}
}

func (vr *versionRepo) Create(ctx context.Context, tx *gorm.DB, version *types.Version) (*types.Version, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	if err := transaction.WithContext(ctx).Create(version).Error; err != nil {
		return nil, err
	}
	return version, nil
}

func (vr *versionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Version, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var result types.Version
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (vr *versionRepo) GetWithRelations(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Version, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var result types.Version
	if err := transaction.WithContext(ctx).
		Preload("CreatedByRef").
		Preload("Files").
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (vr *versionRepo) ListByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.Version, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var results []*types.Version
	if err := transaction.WithContext(ctx).
		Preload("CreatedByRef").
		Preload("Files").
		Where("entity_id = ?", entityID).
		Order("version_number DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vr *versionRepo) MaxNumber(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var max int
	if err := transaction.WithContext(ctx).
		Model(&types.Version{}).
		Where("entity_id = ?", entityID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (vr *versionRepo) UnsetCurrent(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Version{}).
		Where("entity_id = ?", entityID).
		Where("is_current = ?", true).
		Update("is_current", false).Error
}

func (vr *versionRepo) SetCurrent(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Version{}).
		Where("id = ?", id).
		Update("is_current", true).Error
}

func (vr *versionRepo) ReassignCreator(ctx context.Context, tx *gorm.DB, from, to uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Version{}).
		Where("created_by_id = ?", from).
		Update("created_by_id", to).Error
}

func (vr *versionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Version{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (vr *versionRepo) CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Version{}).
		Where("entity_id = ?", entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (vr *versionRepo) CountByCreator(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Version{}).
		Where("created_by_id = ?", creatorID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
