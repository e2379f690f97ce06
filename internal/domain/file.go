package domain

import (
	"time"

	"github.com/google/uuid"
)

// File is an attachment stored on disk and owned by a version. The version
// ledger tolerates file rows without managing their storage.
type File struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	VersionID    uuid.UUID    `gorm:"type:uuid;not null;index;column:version_id" json:"version_id"`
	Version      *Version     `gorm:"foreignKey:VersionID;references:ID" json:"version,omitempty"`
	Filename     string       `gorm:"not null;column:filename" json:"filename"`
	OriginalName string       `gorm:"not null;column:original_name" json:"original_name"`
	Filepath     string       `gorm:"not null;column:filepath" json:"filepath"`
	Mimetype     string       `gorm:"column:mimetype" json:"mimetype"`
	Size         int64        `gorm:"column:size" json:"size"`
	UploadedByID uuid.UUID    `gorm:"type:uuid;not null;column:uploaded_by_id" json:"uploaded_by_id"`
	UploadedBy   *Contributor `gorm:"foreignKey:UploadedByID;references:ID" json:"uploaded_by,omitempty"`
	Checksum     string       `gorm:"column:checksum" json:"checksum"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (File) TableName() string { return "file" }
