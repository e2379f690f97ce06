package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Version is an immutable snapshot of an entity's content. Version numbers are
// assigned sequentially per entity starting at 1, and exactly one version per
// entity is current. Only the IsCurrent flag may change after creation.
type Version struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID      uuid.UUID         `gorm:"type:uuid;not null;index;column:entity_id;uniqueIndex:idx_version_entity_number" json:"entity_id"`
	Entity        *Entity           `gorm:"foreignKey:EntityID;references:ID" json:"entity,omitempty"`
	VersionNumber int               `gorm:"not null;column:version_number;uniqueIndex:idx_version_entity_number" json:"version_number"`
	Title         string            `gorm:"column:title" json:"title"`
	Content       string            `gorm:"column:content" json:"content"`
	Summary       string            `gorm:"column:summary" json:"summary"`
	CreatedByID   uuid.UUID         `gorm:"type:uuid;not null;column:created_by_id" json:"created_by_id"`
	CreatedByRef  *Contributor      `gorm:"foreignKey:CreatedByID;references:ID" json:"created_by,omitempty"`
	IsCurrent     bool              `gorm:"not null;default:false;column:is_current" json:"is_current"`
	Metadata      datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`

	Files []*File `gorm:"foreignKey:VersionID;references:ID" json:"files,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Version) TableName() string { return "version" }
