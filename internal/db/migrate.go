package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&types.Contributor{},

		// Lifecycle registry
		&types.State{},

		// Entities + satellites
		&types.Entity{},
		&types.EntityContributor{},
		&types.Version{},
		&types.HistoryEntry{},
		&types.File{},
	)
}

func EnsureIndexes(db *gorm.DB) error {
	// Timeline reads scan per entity ordered by time in both directions.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_entity_history_entity_created
		ON entity_history (entity_id, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_entity_history_entity_created: %w", err)
	}
	// At most one current version per entity, enforced at the store level too.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_version_entity_current
		ON version (entity_id)
		WHERE is_current;
	`).Error; err != nil {
		return fmt.Errorf("create idx_version_entity_current: %w", err)
	}
	return nil
}
