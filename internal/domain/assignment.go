package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	AssignmentRoleOwner  = "owner"
	AssignmentRoleEditor = "editor"
	AssignmentRoleViewer = "viewer"
)

// ValidAssignmentRole reports whether r is a recognized per-entity role.
func ValidAssignmentRole(r string) bool {
	switch r {
	case AssignmentRoleOwner, AssignmentRoleEditor, AssignmentRoleViewer:
		return true
	}
	return false
}

// EntityContributor joins an entity to a contributor with a role. The
// (entity, contributor) pair is unique; re-assigning updates the role in place.
type EntityContributor struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_entity_contributor;column:entity_id" json:"entity_id"`
	ContributorID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_entity_contributor;column:contributor_id" json:"contributor_id"`
	Contributor   *Contributor `gorm:"foreignKey:ContributorID;references:ID" json:"contributor,omitempty"`
	Role          string       `gorm:"not null;default:'editor';column:role" json:"role"`
	AssignedAt    time.Time    `gorm:"not null;column:assigned_at" json:"assigned_at"`
}

func (EntityContributor) TableName() string { return "entity_contributor" }
