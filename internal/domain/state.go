package domain

import (
	"time"

	"github.com/google/uuid"
)

// State is one stage of the editorial lifecycle. At most one state carries
// IsInitial at any time; IsFinal is advisory and does not restrict transitions.
type State struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Label       string    `gorm:"not null;column:label" json:"label"`
	Color       string    `gorm:"not null;default:'#6B7280';column:color" json:"color"`
	Order       int       `gorm:"not null;default:0;column:sort_order" json:"order"`
	Description string    `gorm:"column:description" json:"description"`
	IsInitial   bool      `gorm:"not null;default:false;column:is_initial" json:"is_initial"`
	IsFinal     bool      `gorm:"not null;default:false;column:is_final" json:"is_final"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (State) TableName() string { return "state" }
