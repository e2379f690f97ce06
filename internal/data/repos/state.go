package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

type StateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, state *types.State) (*types.State, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.State, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.State, error)
	GetInitial(ctx context.Context, tx *gorm.DB) (*types.State, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.State, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	ClearInitial(ctx context.Context, tx *gorm.DB) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type stateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStateRepo(db *gorm.DB, baseLog *logger.Logger) StateRepo {
	repoLog := baseLog.With("repo", "StateRepo")
	return &stateRepo{db: db, log: repoLog}
}

func (sr *stateRepo) Create(ctx context.Context, tx *gorm.DB, state *types.State) (*types.State, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(state).Error; err != nil {
		return nil, err
	}
	return state, nil
}

func (sr *stateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.State, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.State
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *stateRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.State, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.State
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *stateRepo) GetInitial(ctx context.Context, tx *gorm.DB) (*types.State, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.State
	if err := transaction.WithContext(ctx).
		Where("is_initial = ?", true).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *stateRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.State, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.State
	if err := transaction.WithContext(ctx).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *stateRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.State{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (sr *stateRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.State{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (sr *stateRepo) ClearInitial(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.State{}).
		Where("is_initial = ?", true).
		Update("is_initial", false).Error
}

func (sr *stateRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.State{}).Error
}
