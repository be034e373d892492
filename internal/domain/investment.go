package domain

import (
	"time"

	"gorm.io/gorm"
)

// Investment statuses. Transitions are monotonic in the order
// PENDING -> ACTIVE -> {MATURED, CLOSED}; only PENDING -> ACTIVE is automated.
const (
	InvestmentStatusPending = "PENDING"
	InvestmentStatusActive  = "ACTIVE"
	InvestmentStatusMatured = "MATURED"
	InvestmentStatusClosed  = "CLOSED"
)

// MaturityYears is the fixed policy offset between start and maturity dates.
const MaturityYears = 5

// Investment represents a principal allocation owned by an investor
type Investment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Amount       float64   `gorm:"not null" json:"amount"`
	ROI          float64   `gorm:"default:0" json:"roi"`
	Status       string    `gorm:"index;default:'PENDING'" json:"status"`
	StartDate    time.Time `json:"start_date"`
	MaturityDate time.Time `json:"maturity_date"`
	AssetType    string    `json:"asset_type"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Investment
func (Investment) TableName() string {
	return "investments"
}

// BeforeCreate hook
func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	i.CreatedAt = now
	i.UpdatedAt = now
	if i.StartDate.IsZero() {
		i.StartDate = now
	}
	if i.MaturityDate.IsZero() {
		i.MaturityDate = i.StartDate.AddDate(MaturityYears, 0, 0)
	}
	if i.Status == "" {
		i.Status = InvestmentStatusPending
	}
	return nil
}

// BeforeUpdate hook
func (i *Investment) BeforeUpdate(tx *gorm.DB) error {
	i.UpdatedAt = time.Now()
	return nil
}

// DueForActivation reports whether the investment should transition from
// PENDING to ACTIVE given the end of the calendar day containing asOf. An
// investment whose start date falls on that day is due regardless of the
// time-of-day the check runs.
func (i *Investment) DueForActivation(asOf time.Time) bool {
	return i.Status == InvestmentStatusPending && !i.StartDate.After(EndOfDay(asOf))
}

// EndOfDay returns 23:59:59 of the calendar day containing t, in t's location
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
