package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

type FileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, file *types.File) (*types.File, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.File, error)
	GetWithRelations(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.File, error)
	ListByVersion(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) ([]*types.File, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ReassignUploader(ctx context.Context, tx *gorm.DB, from, to uuid.UUID) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error)
}

type fileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFileRepo(db *gorm.DB, baseLog *logger.Logger) FileRepo {
	repoLog := baseLog.With("repo", "FileRepo")
	return &fileRepo{db: db, log: repoLog}
}

func (fr *fileRepo) Create(ctx context.Context, tx *gorm.DB, file *types.File) (*types.File, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if err := transaction.WithContext(ctx).Create(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

func (fr *fileRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.File, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var result types.File
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (fr *fileRepo) GetWithRelations(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.File, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var result types.File
	if err := transaction.WithContext(ctx).
		Preload("UploadedBy").
		Preload("Version").
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (fr *fileRepo) ListByVersion(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) ([]*types.File, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.File
	if err := transaction.WithContext(ctx).
		Preload("UploadedBy").
		Where("version_id = ?", versionID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *fileRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.File{}).Error
}

func (fr *fileRepo) ReassignUploader(ctx context.Context, tx *gorm.DB, from, to uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.File{}).
		Where("uploaded_by_id = ?", from).
		Update("uploaded_by_id", to).Error
}

func (fr *fileRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.File{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (fr *fileRepo) CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.File{}).
		Joins("JOIN version ON version.id = file.version_id").
		Where("version.entity_id = ?", entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
