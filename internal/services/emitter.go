package services

import (
	"fmt"
	"log"

	"crestmont/internal/domain"
	"crestmont/internal/metrics"

	"gorm.io/gorm"
)

// EmitterService is the append-only side channel for notifications and audit
// log entries. Callers treat emission as best-effort: a failed write is
// logged and must never fail or roll back the triggering operation.
type EmitterService struct {
	db *gorm.DB
}

// NewEmitterService creates a new emitter service
func NewEmitterService(db *gorm.DB) *EmitterService {
	return &EmitterService{db: db}
}

// Notify appends an unread notification for the given user
func (s *EmitterService) Notify(userID uint, message string) error {
	notification := domain.Notification{
		UserID:  userID,
		Message: message,
		IsRead:  false,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	metrics.RecordNotificationEmitted()
	return nil
}

// Audit appends an audit log entry for the acting user
func (s *EmitterService) Audit(actorID uint, action, details string) error {
	entry := domain.AuditLog{
		UserID:  actorID,
		Action:  action,
		Details: details,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

// NotifyBestEffort emits a notification and logs (never returns) a failure
func (s *EmitterService) NotifyBestEffort(userID uint, message string) {
	if err := s.Notify(userID, message); err != nil {
		log.Printf("[EMITTER] Notification write failed for user=%d: %v", userID, err)
	}
}

// AuditBestEffort emits an audit entry and logs (never returns) a failure
func (s *EmitterService) AuditBestEffort(actorID uint, action, details string) {
	if err := s.Audit(actorID, action, details); err != nil {
		log.Printf("[EMITTER] Audit write failed for actor=%d action=%s: %v", actorID, action, err)
	}
}

// MarkAllRead bulk-marks every unread notification owned by userID as read
// and returns the number of rows updated
func (s *EmitterService) MarkAllRead(userID uint) (int64, error) {
	result := s.db.Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		log.Printf("[EMITTER] MarkAllRead failed for user=%d: %v", userID, result.Error)
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	log.Printf("[EMITTER] MarkAllRead successful: user=%d, updated=%d", userID, result.RowsAffected)
	return result.RowsAffected, nil
}

// ListNotifications returns the user's notifications, newest first
func (s *EmitterService) ListNotifications(userID uint, skip, limit int) ([]domain.Notification, error) {
	var notifications []domain.Notification
	query := s.db.Where("user_id = ?", userID).Order("created_at DESC")

	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		if limit > 500 {
			limit = 500
		}
		query = query.Limit(limit)
	} else {
		query = query.Limit(100)
	}

	if err := query.Find(&notifications).Error; err != nil {
		log.Printf("[EMITTER] ListNotifications failed: database error: %v", err)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
