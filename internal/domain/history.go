package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionCreated          = "created"
	ActionUpdated          = "updated"
	ActionStateChange      = "state_change"
	ActionVersionCreated   = "version_created"
	ActionVersionRestored  = "version_restored"
	ActionFileUploaded     = "file_uploaded"
	ActionFileDeleted      = "file_deleted"
	ActionContributorAdded = "contributor_added"
)

// HistoryEntry is one append-only audit record of an entity mutation. Entries
// are never updated or deleted, so the model carries no UpdatedAt/DeletedAt.
type HistoryEntry struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID    uuid.UUID         `gorm:"type:uuid;not null;index;column:entity_id" json:"entity_id"`
	OldStateID  *uuid.UUID        `gorm:"type:uuid;column:old_state_id" json:"old_state_id,omitempty"`
	OldState    *State            `gorm:"foreignKey:OldStateID;references:ID" json:"old_state,omitempty"`
	NewStateID  *uuid.UUID        `gorm:"type:uuid;column:new_state_id" json:"new_state_id,omitempty"`
	NewState    *State            `gorm:"foreignKey:NewStateID;references:ID" json:"new_state,omitempty"`
	ChangedByID uuid.UUID         `gorm:"type:uuid;not null;column:changed_by_id" json:"changed_by_id"`
	ChangedBy   *Contributor      `gorm:"foreignKey:ChangedByID;references:ID" json:"changed_by,omitempty"`
	Action      string            `gorm:"not null;default:'state_change';column:action" json:"action"`
	Comment     string            `gorm:"column:comment" json:"comment"`
	Changes     datatypes.JSONMap `gorm:"column:changes" json:"changes"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (HistoryEntry) TableName() string { return "entity_history" }

// FieldChange is the {old,new} pair stored under one field name in Changes.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}
