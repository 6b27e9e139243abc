package models

import "time"

// Access levels stored on a grant. These are tiers, not a strict
// hierarchy: see services.PermissionService for the capability rules.
const (
	AccessView     = "view"
	AccessDownload = "download"
	AccessEdit     = "edit"
	// AccessOwner is never stored; it is the derived annotation for
	// items the subject owns.
	AccessOwner = "owner"
)

const (
	ItemTypeFile   = "file"
	ItemTypeFolder = "folder"
)

// Permission authorizes one user a capability tier on exactly one file
// or folder (FileID xor FolderID set).
type Permission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID      *uint     `gorm:"index" json:"file_id,omitempty"`
	FolderID    *uint     `gorm:"index" json:"folder_id,omitempty"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	GrantedBy   uint      `gorm:"not null" json:"granted_by"`
	AccessLevel string    `gorm:"size:32;not null" json:"access_level"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidAccessLevel reports whether level is a storable grant tier.
func ValidAccessLevel(level string) bool {
	switch level {
	case AccessView, AccessDownload, AccessEdit:
		return true
	}
	return false
}
