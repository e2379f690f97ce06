package repos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// EntityFilter narrows List results.
type EntityFilter struct {
	Type          string
	StateID       uuid.UUID
	Priority      string
	Search        string
	ContributorID uuid.UUID
	SortBy        string
	SortDesc      bool
	Page          int
	Limit         int
}

// StateCount is one row of a group-by-current-state aggregation.
type StateCount struct {
	StateID uuid.UUID `json:"state_id"`
	Count   int64     `json:"count"`
}

// TypeCount is one row of a group-by-type aggregation.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type EntityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entity *types.Entity) (*types.Entity, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error)
	// GetByIDForUpdate locks the entity row for the rest of the transaction so
	// concurrent version mutations for one entity serialize.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error)
	GetWithRelations(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error)
	List(ctx context.Context, tx *gorm.DB, filter EntityFilter) ([]*types.Entity, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	UpdateCurrentState(ctx context.Context, tx *gorm.DB, id, stateID uuid.UUID) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ReassignCreator(ctx context.Context, tx *gorm.DB, from, to uuid.UUID) error
	CountByCurrentState(ctx context.Context, tx *gorm.DB, stateID uuid.UUID) (int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	GroupByState(ctx context.Context, tx *gorm.DB) ([]StateCount, error)
	GroupByType(ctx context.Context, tx *gorm.DB) ([]TypeCount, error)
	DailyCreated(ctx context.Context, tx *gorm.DB, since time.Time) ([]DateCount, error)
}

type entityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	repoLog := baseLog.With("repo", "EntityRepo")
	return &entityRepo{db: db, log: repoLog}
}

func (er *entityRepo) Create(ctx context.Context, tx *gorm.DB, entity *types.Entity) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if err := transaction.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

func (er *entityRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var result types.Entity
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (er *entityRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	query := transaction.WithContext(ctx)
	// SQLite has a single writer and no FOR UPDATE syntax; the clause is only
	// needed (and valid) on postgres.
	if transaction.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var result types.Entity
	if err := query.
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (er *entityRepo) GetWithRelations(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var result types.Entity
	if err := transaction.WithContext(ctx).
		Preload("CurrentState").
		Preload("Creator").
		Preload("Assignments.Contributor").
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version_number DESC")
		}).
		Preload("Versions.CreatedByRef").
		Preload("Versions.Files").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(50)
		}).
		Preload("History.OldState").
		Preload("History.NewState").
		Preload("History.ChangedBy").
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (er *entityRepo) List(ctx context.Context, tx *gorm.DB, filter EntityFilter) ([]*types.Entity, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	query := transaction.WithContext(ctx).Model(&types.Entity{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.StateID != uuid.Nil {
		query = query.Where("current_state_id = ?", filter.StateID)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.ContributorID != uuid.Nil {
		query = query.Where(
			"id IN (?)",
			transaction.Model(&types.EntityContributor{}).
				Select("entity_id").
				Where("contributor_id = ?", filter.ContributorID),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	switch sortBy {
	case "name", "priority", "due_date", "updated_at", "created_at":
	default:
		sortBy = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var results []*types.Entity
	if err := query.
		Preload("CurrentState").
		Preload("Creator").
		Preload("Assignments.Contributor").
		Order(sortBy + " " + direction).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (er *entityRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (er *entityRepo) UpdateCurrentState(ctx context.Context, tx *gorm.DB, id, stateID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Where("id = ?", id).
		Update("current_state_id", stateID).Error
}

func (er *entityRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Entity{}).Error
}

func (er *entityRepo) ReassignCreator(ctx context.Context, tx *gorm.DB, from, to uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	// Includes soft-deleted rows: ownership must move everywhere.
	return transaction.WithContext(ctx).
		Unscoped().
		Model(&types.Entity{}).
		Where("created_by = ?", from).
		Update("created_by", to).Error
}

func (er *entityRepo) CountByCurrentState(ctx context.Context, tx *gorm.DB, stateID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Where("current_state_id = ?", stateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (er *entityRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (er *entityRepo) CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (er *entityRepo) GroupByState(ctx context.Context, tx *gorm.DB) ([]StateCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []StateCount
	if err := transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Select("current_state_id AS state_id, COUNT(id) AS count").
		Group("current_state_id").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *entityRepo) GroupByType(ctx context.Context, tx *gorm.DB) ([]TypeCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []TypeCount
	if err := transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Select("type, COUNT(id) AS count").
		Group("type").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *entityRepo) DailyCreated(ctx context.Context, tx *gorm.DB, since time.Time) ([]DateCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []DateCount
	if err := transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Select("DATE(created_at) AS date, COUNT(id) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
