package domain

import (
	"time"

	"gorm.io/gorm"
)

// Audit action tags
const (
	AuditCreateInvestment    = "CREATE_INVESTMENT"
	AuditUpdateInvestment    = "UPDATE_INVESTMENT"
	AuditDeleteInvestment    = "DELETE_INVESTMENT"
	AuditInvestmentActivated = "INVESTMENT_ACTIVATED"
	AuditCreateTransaction   = "CREATE_TRANSACTION"
)

// AuditLog is an append-only record of an administrative or investor action.
// UserID is the acting user, who may be an admin acting on behalf of another.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Action    string    `gorm:"index;not null" json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hook
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	a.CreatedAt = time.Now()
	return nil
}
