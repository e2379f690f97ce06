package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContributorRoleAdmin       = "admin"
	ContributorRoleContributor = "contributor"
	ContributorRoleViewer      = "viewer"
)

// ValidContributorRole reports whether r is a recognized account role.
func ValidContributorRole(r string) bool {
	switch r {
	case ContributorRoleAdmin, ContributorRoleContributor, ContributorRoleViewer:
		return true
	}
	return false
}

// Contributor is an account that can author entities and versions.
// Password is a bcrypt hash and is never serialized.
type Contributor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null;column:name" json:"name"`
	Email     string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string     `gorm:"not null;column:password" json:"-"`
	Role      string     `gorm:"not null;default:'contributor';column:role" json:"role"`
	Avatar    string     `gorm:"column:avatar" json:"avatar"`
	IsActive  bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`
	LastLogin *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Contributor) TableName() string { return "contributor" }
