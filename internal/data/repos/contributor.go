package repos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// ContributorFilter narrows List results. A nil IsActive means "either".
type ContributorFilter struct {
	Search   string
	Role     string
	IsActive *bool
	Page     int
	Limit    int
}

type ContributorRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contributor *types.Contributor) (*types.Contributor, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contributor, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Contributor, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filter ContributorFilter) ([]*types.Contributor, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	TouchLastLogin(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountActive(ctx context.Context, tx *gorm.DB) (int64, error)
}

type contributorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContributorRepo(db *gorm.DB, baseLog *logger.Logger) ContributorRepo {
	repoLog := baseLog.With("repo", "ContributorRepo")
	return &contributorRepo{db: db, log: repoLog}
}

func (cr *contributorRepo) Create(ctx context.Context, tx *gorm.DB, contributor *types.Contributor) (*types.Contributor, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(contributor).Error; err != nil {
		return nil, err
	}
	return contributor, nil
}

func (cr *contributorRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contributor, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Contributor
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *contributorRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Contributor, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Contributor
	if err := transaction.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *contributorRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Contributor{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (cr *contributorRepo) List(ctx context.Context, tx *gorm.DB, filter ContributorFilter) ([]*types.Contributor, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	query := transaction.WithContext(ctx).Model(&types.Contributor{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var results []*types.Contributor
	if err := query.
		Order("name ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (cr *contributorRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Contributor{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (cr *contributorRepo) TouchLastLogin(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Contributor{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

func (cr *contributorRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Contributor{}).Error
}

func (cr *contributorRepo) CountActive(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Contributor{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
