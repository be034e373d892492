package domain

import (
	"time"

	"gorm.io/gorm"
)

// Notification is a human-readable event record for an investor. Created as a
// side effect of investment and transaction writes; only ever mutated by the
// bulk mark-all-read operation scoped to the owner.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Message   string    `gorm:"not null" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate hook
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	n.CreatedAt = time.Now()
	return nil
}
