package models

import "time"

// TrashItem is the listing view of a soft-deleted file or folder.
type TrashItem struct {
	ItemID      uint      `json:"item_id"`
	ItemType    string    `json:"item_type"`
	Name        string    `json:"name"`
	OwnerID     uint      `json:"owner_id"`
	Size        int64     `json:"size"`
	DeletedAt   time.Time `json:"deleted_at"`
	AutoPurgeAt time.Time `json:"auto_purge_at"`
}
