package models

import "time"

type File struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	FolderID       *uint      `gorm:"index" json:"folder_id,omitempty"` // nil = root level
	Size           int64      `gorm:"not null;default:0" json:"size"`
	MimeType       string     `gorm:"size:255" json:"mime_type"`
	StoragePath    string     `gorm:"size:512;not null" json:"-"` // content-store locator, not the display name
	CreatedBy      uint       `gorm:"not null;index" json:"created_by"`
	IsStarred      bool       `gorm:"not null;default:false" json:"is_starred"`
	IsDeleted      bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	DeletedBy      *uint      `json:"deleted_by,omitempty"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
