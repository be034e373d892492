package domain

import (
	"time"

	"gorm.io/gorm"
)

// Transaction types
const (
	TransactionTypePayment    = "PAYMENT"
	TransactionTypeDeposit    = "DEPOSIT"
	TransactionTypeWithdrawal = "WITHDRAWAL"
	TransactionTypeProfit     = "PROFIT"
)

// Transaction statuses
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusFailed    = "FAILED"
)

// Transaction represents a single monetary event linked to an investor and
// optionally an investment. Rows are never mutated; deletion only happens
// transitively when the linked investment is deleted.
type Transaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Type         string    `gorm:"index;not null" json:"type"`
	Amount       float64   `gorm:"not null" json:"amount"`
	Status       string    `gorm:"index;default:'COMPLETED'" json:"status"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	InvestmentID *uint     `gorm:"index" json:"investment_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate hook
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	t.CreatedAt = now
	if t.Date.IsZero() {
		t.Date = now
	}
	if t.Status == "" {
		t.Status = TransactionStatusCompleted
	}
	return nil
}
