package models

import "time"

// AuditLog is append-only; rows are never mutated or deleted.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Action     string    `gorm:"size:64;not null" json:"action"`
	TargetType string    `gorm:"size:32" json:"target_type"`
	TargetID   *uint     `json:"target_id,omitempty"`
	Details    string    `gorm:"size:1024" json:"details"`
	IPAddress  string    `gorm:"size:64" json:"ip_address"`
	UserAgent  string    `gorm:"size:512" json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}
