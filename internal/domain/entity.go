package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ValidPriority reports whether p is one of the accepted priority levels.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Entity is the tracked unit of work moving through the lifecycle. Deletion is
// soft: the row stays behind for history and version referential integrity.
type Entity struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID     uuid.UUID                   `gorm:"type:uuid;uniqueIndex;not null;column:external_id" json:"uuid"`
	Name           string                      `gorm:"not null;column:name" json:"name"`
	Type           string                      `gorm:"not null;default:'article';column:type" json:"type"`
	Description    string                      `gorm:"column:description" json:"description"`
	Priority       string                      `gorm:"not null;default:'medium';column:priority" json:"priority"`
	DueDate        *time.Time                  `gorm:"column:due_date" json:"due_date,omitempty"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Metadata       datatypes.JSONMap           `gorm:"column:metadata" json:"metadata"`
	CurrentStateID uuid.UUID                   `gorm:"type:uuid;not null;index;column:current_state_id" json:"current_state_id"`
	CurrentState   *State                      `gorm:"foreignKey:CurrentStateID;references:ID" json:"current_state,omitempty"`
	CreatedBy      uuid.UUID                   `gorm:"type:uuid;not null;index;column:created_by" json:"created_by"`
	Creator        *Contributor                `gorm:"foreignKey:CreatedBy;references:ID" json:"creator,omitempty"`

	Assignments []*EntityContributor `gorm:"foreignKey:EntityID;references:ID" json:"assignments,omitempty"`
	Versions    []*Version           `gorm:"foreignKey:EntityID;references:ID" json:"versions,omitempty"`
	History     []*HistoryEntry      `gorm:"foreignKey:EntityID;references:ID" json:"history,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Entity) TableName() string { return "entity" }
