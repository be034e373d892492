package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"crestmont/internal/domain"
	"crestmont/internal/metrics"
	"crestmont/internal/util"
	apperrors "crestmont/pkg/errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// InvestmentService owns the investment lifecycle: creation, updates, the
// date-driven PENDING -> ACTIVE transition, and cascade deletion.
type InvestmentService struct {
	db        *gorm.DB
	emitter   *EmitterService
	validator *validator.Validate
}

// NewInvestmentService creates a new investment service
func NewInvestmentService(db *gorm.DB, emitter *EmitterService) *InvestmentService {
	return &InvestmentService{
		db:        db,
		emitter:   emitter,
		validator: validator.New(),
	}
}

// CreateInvestmentInput carries the fields for creating an investment.
// Amount arrives as a string and is normalized before parsing.
type CreateInvestmentInput struct {
	Title     string     `json:"title" validate:"required"`
	Amount    string     `json:"amount" validate:"required"`
	UserID    uint       `json:"user_id" validate:"required"`
	ROI       float64    `json:"roi" validate:"gte=0"`
	Status    string     `json:"status" validate:"omitempty,oneof=PENDING ACTIVE MATURED CLOSED"`
	StartDate *time.Time `json:"start_date"`
	AssetType string     `json:"asset_type"`
}

// UpdateInvestmentInput carries optional fields for updating an investment
type UpdateInvestmentInput struct {
	Title     *string    `json:"title"`
	Amount    *string    `json:"amount"`
	ROI       *float64   `json:"roi"`
	Status    *string    `json:"status" validate:"omitempty,oneof=PENDING ACTIVE MATURED CLOSED"`
	StartDate *time.Time `json:"start_date"`
	AssetType *string    `json:"asset_type"`
}

// DueTransitions returns the subset of investments that should transition
// from PENDING to ACTIVE as of the end of the calendar day containing now.
// Pure function: callable inline on reads or from a periodic sweep.
func DueTransitions(investments []domain.Investment, now time.Time) []domain.Investment {
	var due []domain.Investment
	for _, inv := range investments {
		if inv.DueForActivation(now) {
			due = append(due, inv)
		}
	}
	return due
}

// ActivateDue applies the PENDING -> ACTIVE transition to every investment
// whose start date has passed as of asOf, and returns how many were
// activated. The status write is guarded by the current status, so two
// concurrent evaluations never activate (or notify for) the same investment
// twice. Notification and audit writes happen after the durable status
// update and are best-effort.
func (s *InvestmentService) ActivateDue(asOf time.Time) (int, error) {
	var candidates []domain.Investment
	if err := s.db.
		Where("status = ? AND start_date <= ?", domain.InvestmentStatusPending, domain.EndOfDay(asOf)).
		Find(&candidates).Error; err != nil {
		log.Printf("[INVESTMENT] ActivateDue failed: database error: %v", err)
		return 0, apperrors.Internal("failed to query due investments", err)
	}

	activated := 0
	for _, inv := range candidates {
		// Re-check the status inside the write itself; a racing activation
		// leaves RowsAffected at zero and we skip the side effects.
		result := s.db.Model(&domain.Investment{}).
			Where("id = ? AND status = ?", inv.ID, domain.InvestmentStatusPending).
			Updates(map[string]interface{}{
				"status":     domain.InvestmentStatusActive,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			log.Printf("[INVESTMENT] ActivateDue failed: update error for id=%d: %v", inv.ID, result.Error)
			return activated, apperrors.Internal("failed to activate investment", result.Error)
		}
		if result.RowsAffected == 0 {
			continue
		}

		activated++
		metrics.RecordInvestmentActivated()
		log.Printf("[INVESTMENT] Activated investment id=%d (%s) for user=%d", inv.ID, inv.Title, inv.UserID)

		s.emitter.NotifyBestEffort(inv.UserID,
			fmt.Sprintf("Your investment %q has started and is now active.", inv.Title))
		s.emitter.AuditBestEffort(inv.UserID, domain.AuditInvestmentActivated,
			fmt.Sprintf("Investment %d (%s) auto-activated on start date", inv.ID, inv.Title))
	}

	return activated, nil
}

// Create validates and persists a new investment on behalf of actorID.
// A requested PENDING status is coerced to ACTIVE when the start date is not
// after the end of the current day, so a newly created investment is never
// observably pending-but-due.
func (s *InvestmentService) Create(actorID uint, input CreateInvestmentInput) (*domain.Investment, error) {
	log.Printf("[INVESTMENT] Create request: title=%s, user=%d, by actor=%d", input.Title, input.UserID, actorID)

	if err := s.validator.Struct(input); err != nil {
		return nil, apperrors.Validation(validationMessage(err))
	}

	amount, err := util.ParseAmount(input.Amount)
	if err != nil {
		log.Printf("[INVESTMENT] Create failed: %v", err)
		return nil, apperrors.Validation(err.Error())
	}

	now := time.Now()
	startDate := now
	if input.StartDate != nil {
		startDate = *input.StartDate
	}

	status := input.Status
	if status == "" {
		status = domain.InvestmentStatusPending
	}
	// Same due-check as the lazy evaluator, applied at creation time.
	if status == domain.InvestmentStatusPending && !startDate.After(domain.EndOfDay(now)) {
		status = domain.InvestmentStatusActive
	}

	investment := domain.Investment{
		Title:        input.Title,
		Amount:       amount,
		ROI:          input.ROI,
		Status:       status,
		StartDate:    startDate,
		MaturityDate: startDate.AddDate(domain.MaturityYears, 0, 0),
		AssetType:    input.AssetType,
		UserID:       input.UserID,
	}

	if err := s.db.Create(&investment).Error; err != nil {
		log.Printf("[INVESTMENT] Create failed: database error: %v", err)
		return nil, apperrors.Internal("failed to create investment", err)
	}

	log.Printf("[INVESTMENT] Create successful: id=%d, status=%s", investment.ID, investment.Status)
	metrics.RecordInvestmentCreated()

	s.emitter.NotifyBestEffort(investment.UserID,
		fmt.Sprintf("A new investment asset %q with principal %.2f has been allocated to your portfolio.",
			investment.Title, investment.Amount))
	s.emitter.AuditBestEffort(actorID, domain.AuditCreateInvestment,
		fmt.Sprintf("Created investment %d (%s) for user %d, amount %.2f",
			investment.ID, investment.Title, investment.UserID, investment.Amount))

	return &investment, nil
}

// Get returns a single investment by id
func (s *InvestmentService) Get(id uint) (*domain.Investment, error) {
	var investment domain.Investment
	if err := s.db.First(&investment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("investment not found")
		}
		return nil, apperrors.Internal("failed to load investment", err)
	}
	return &investment, nil
}

// Update applies the given field changes. Setting status to PENDING while
// the start date has already passed coerces the status to ACTIVE and emits a
// distinct auto-activation notification.
func (s *InvestmentService) Update(actorID, id uint, input UpdateInvestmentInput) (*domain.Investment, error) {
	log.Printf("[INVESTMENT] Update request: id=%d, by actor=%d", id, actorID)

	if err := s.validator.Struct(input); err != nil {
		return nil, apperrors.Validation(validationMessage(err))
	}

	var investment domain.Investment
	if err := s.db.First(&investment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[INVESTMENT] Update failed: investment id=%d not found", id)
			return nil, apperrors.NotFound("investment not found")
		}
		log.Printf("[INVESTMENT] Update failed: database error: %v", err)
		return nil, apperrors.Internal("failed to load investment", err)
	}

	if input.Title != nil {
		investment.Title = *input.Title
	}
	if input.Amount != nil {
		amount, err := util.ParseAmount(*input.Amount)
		if err != nil {
			log.Printf("[INVESTMENT] Update failed: %v", err)
			return nil, apperrors.Validation(err.Error())
		}
		investment.Amount = amount
	}
	if input.ROI != nil {
		investment.ROI = *input.ROI
	}
	if input.StartDate != nil {
		investment.StartDate = *input.StartDate
	}
	if input.AssetType != nil {
		investment.AssetType = *input.AssetType
	}

	autoActivated := false
	if input.Status != nil {
		investment.Status = *input.Status
		if investment.DueForActivation(time.Now()) {
			investment.Status = domain.InvestmentStatusActive
			autoActivated = true
		}
	}

	if err := s.db.Save(&investment).Error; err != nil {
		log.Printf("[INVESTMENT] Update failed: save error: %v", err)
		return nil, apperrors.Internal("failed to update investment", err)
	}

	log.Printf("[INVESTMENT] Update successful: id=%d, status=%s", investment.ID, investment.Status)

	if autoActivated {
		metrics.RecordInvestmentActivated()
		s.emitter.NotifyBestEffort(investment.UserID,
			fmt.Sprintf("Your investment %q was activated automatically: its start date has already passed.",
				investment.Title))
	}
	s.emitter.AuditBestEffort(actorID, domain.AuditUpdateInvestment,
		fmt.Sprintf("Updated investment %d (%s)", investment.ID, investment.Title))

	return &investment, nil
}

// Delete removes an investment and, first, every transaction referencing it.
// The cascade is explicit and runs inside a single store transaction, so a
// crash mid-delete cannot leave orphaned child rows.
func (s *InvestmentService) Delete(actorID, id uint) error {
	log.Printf("[INVESTMENT] Delete request: id=%d, by actor=%d", id, actorID)

	var investment domain.Investment
	if err := s.db.First(&investment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[INVESTMENT] Delete failed: investment id=%d not found", id)
			return apperrors.NotFound("investment not found")
		}
		log.Printf("[INVESTMENT] Delete failed: database error: %v", err)
		return apperrors.Internal("failed to load investment", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("investment_id = ?", investment.ID).Delete(&domain.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&investment).Error
	})
	if err != nil {
		log.Printf("[INVESTMENT] Delete failed: cascade error for id=%d: %v", id, err)
		return apperrors.Internal("failed to delete investment", err)
	}

	log.Printf("[INVESTMENT] Delete successful: id=%d (%s)", investment.ID, investment.Title)
	s.emitter.AuditBestEffort(actorID, domain.AuditDeleteInvestment,
		fmt.Sprintf("Deleted investment %d (%s) of user %d and its transactions",
			investment.ID, investment.Title, investment.UserID))

	return nil
}

// List returns investments, optionally scoped to one owner, newest first.
// Listing is the lazy evaluation point for due activations: after this call
// no returned investment is PENDING with a start date in the past.
func (s *InvestmentService) List(ownerID *uint, skip, limit int) ([]domain.Investment, error) {
	if _, err := s.ActivateDue(time.Now()); err != nil {
		return nil, err
	}

	var investments []domain.Investment
	query := s.db.Order("created_at DESC")
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

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

	if err := query.Find(&investments).Error; err != nil {
		log.Printf("[INVESTMENT] List failed: database error: %v", err)
		return nil, apperrors.Internal("failed to list investments", err)
	}

	return investments, nil
}

// validationMessage flattens validator errors into a caller-facing message
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		switch e.Tag() {
		case "required":
			return fmt.Sprintf("field %s is required", e.Field())
		case "gt", "gte":
			return fmt.Sprintf("field %s is out of range", e.Field())
		case "oneof":
			return fmt.Sprintf("field %s has an invalid value", e.Field())
		}
		return fmt.Sprintf("field %s is invalid", e.Field())
	}
	return "invalid input"
}
