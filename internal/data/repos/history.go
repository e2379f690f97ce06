package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// DateCount is one day's bucket of an activity aggregation.
type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ActorCount ranks a contributor by recorded activity.
type ActorCount struct {
	ContributorID uuid.UUID `json:"contributor_id"`
	Count         int64     `json:"count"`
}

// HistoryRepo is append-only: entries are written once and never updated or
// deleted, so the interface exposes no mutation beyond Append.
type HistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, entry *types.HistoryEntry) (*types.HistoryEntry, error)
	ListByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, newestFirst bool, limit int) ([]*types.HistoryEntry, error)
	ListStateChanges(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.HistoryEntry, error)
	LatestByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (*types.HistoryEntry, error)
	CountByEntityAction(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, action string) (int64, error)
	CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	DailyCounts(ctx context.Context, tx *gorm.DB, since time.Time) ([]DateCount, error)
	TopActors(ctx context.Context, tx *gorm.DB, limit int) ([]ActorCount, error)
	ReassignActor(ctx context.Context, tx *gorm.DB, from, to uuid.UUID) error
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

func (hr *historyRepo) Append(ctx context.Context, tx *gorm.DB, entry *types.HistoryEntry) (*types.HistoryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (hr *historyRepo) ListByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, newestFirst bool, limit int) ([]*types.HistoryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}
	query := transaction.WithContext(ctx).
		Preload("OldState").
		Preload("NewState").
		Preload("ChangedBy").
		Where("entity_id = ?", entityID).
		Order(order)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var results []*types.HistoryEntry
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *historyRepo) ListStateChanges(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.HistoryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var results []*types.HistoryEntry
	if err := transaction.WithContext(ctx).
		Preload("OldState").
		Preload("NewState").
		Where("entity_id = ?", entityID).
		Where("action = ?", types.ActionStateChange).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *historyRepo) LatestByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (*types.HistoryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var result types.HistoryEntry
	if err := transaction.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (hr *historyRepo) CountByEntityAction(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, action string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.HistoryEntry{}).
		Where("entity_id = ?", entityID).
		Where("action = ?", action).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (hr *historyRepo) CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.HistoryEntry{}).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (hr *historyRepo) DailyCounts(ctx context.Context, tx *gorm.DB, since time.Time) ([]DateCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var results []DateCount
	if err := transaction.WithContext(ctx).
		Model(&types.HistoryEntry{}).
		Select("DATE(created_at) AS date, COUNT(id) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *historyRepo) TopActors(ctx context.Context, tx *gorm.DB, limit int) ([]ActorCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	if limit <= 0 {
		limit = 10
	}
	var results []ActorCount
	if err := transaction.WithContext(ctx).
		Model(&types.HistoryEntry{}).
		Select("changed_by_id AS contributor_id, COUNT(id) AS count").
		Group("changed_by_id").
		Order("count DESC").
		Limit(limit).
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *historyRepo) ReassignActor(ctx context.Context, tx *gorm.DB, from, to uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	// The one permitted rewrite: contributor deletion moves authorship so the
	// log never points at a missing account. Entry content is untouched.
	return transaction.WithContext(ctx).
		Model(&types.HistoryEntry{}).
		Where("changed_by_id = ?", from).
		Update("changed_by_id", to).Error
}
