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

// Payments amortize an investment's principal over a fixed 60-installment
// schedule; monthlyRequired = principal / monthlyInstallments.
const monthlyInstallments = 60

// TransactionService validates and appends payment, deposit, withdrawal and
// profit records against the ledger
type TransactionService struct {
	db        *gorm.DB
	emitter   *EmitterService
	validator *validator.Validate
}

// NewTransactionService creates a new transaction service
func NewTransactionService(db *gorm.DB, emitter *EmitterService) *TransactionService {
	return &TransactionService{
		db:        db,
		emitter:   emitter,
		validator: validator.New(),
	}
}

// RecordTransactionInput carries the fields for recording a transaction.
// Amount arrives as a string and is normalized before parsing.
type RecordTransactionInput struct {
	Type         string     `json:"type" validate:"required,oneof=PAYMENT DEPOSIT WITHDRAWAL PROFIT"`
	Amount       string     `json:"amount" validate:"required"`
	UserID       uint       `json:"user_id" validate:"required"`
	InvestmentID *uint      `json:"investment_id"`
	Status       string     `json:"status" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
	Description  string     `json:"description"`
	Method       string     `json:"method"`
	Date         *time.Time `json:"date"`
}

// Record validates and appends a transaction. PAYMENT transactions against a
// PENDING investment are rejected before any write. After a successful
// PAYMENT write the relevant investment is resolved and an on-track or
// falling-behind notification is emitted against the fixed 60-installment
// amortization target; the transaction succeeds either way.
func (s *TransactionService) Record(input RecordTransactionInput) (*domain.Transaction, error) {
	log.Printf("[TRANSACTION] Record request: type=%s, user=%d", input.Type, input.UserID)

	if err := s.validator.Struct(input); err != nil {
		return nil, apperrors.Validation(validationMessage(err))
	}

	amount, err := util.ParseAmount(input.Amount)
	if err != nil {
		log.Printf("[TRANSACTION] Record failed: %v", err)
		return nil, apperrors.Validation(err.Error())
	}

	// Payments may only be recorded against investments that have started.
	if input.Type == domain.TransactionTypePayment && input.InvestmentID != nil {
		var linked domain.Investment
		err := s.db.First(&linked, *input.InvestmentID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[TRANSACTION] Record failed: database error: %v", err)
			return nil, apperrors.Internal("failed to load investment", err)
		}
		if err == nil && linked.Status == domain.InvestmentStatusPending {
			log.Printf("[TRANSACTION] Record rejected: investment id=%d (%s) is still pending", linked.ID, linked.Title)
			return nil, apperrors.DomainState(fmt.Sprintf(
				"investment %q has not started yet; payments can be recorded once it is activated", linked.Title))
		}
	}

	description := input.Description
	if description == "" {
		method := input.Method
		if method == "" {
			method = "bank transfer"
		}
		description = fmt.Sprintf("%s of %.2f via %s", input.Type, amount, method)
	}

	transaction := domain.Transaction{
		Type:         input.Type,
		Amount:       amount,
		Status:       input.Status,
		Description:  description,
		UserID:       input.UserID,
		InvestmentID: input.InvestmentID,
	}
	if input.Date != nil {
		transaction.Date = *input.Date
	}

	if err := s.db.Create(&transaction).Error; err != nil {
		log.Printf("[TRANSACTION] Record failed: database error: %v", err)
		return nil, apperrors.Internal("failed to record transaction", err)
	}

	log.Printf("[TRANSACTION] Record successful: id=%d, type=%s, amount=%.2f",
		transaction.ID, transaction.Type, transaction.Amount)
	metrics.RecordTransaction(transaction.Type)

	if transaction.Type == domain.TransactionTypePayment {
		s.emitProgressNotification(&transaction, amount)
	}

	s.emitter.AuditBestEffort(input.UserID, domain.AuditCreateTransaction,
		fmt.Sprintf("Recorded %s transaction %d of %.2f for user %d",
			transaction.Type, transaction.ID, transaction.Amount, transaction.UserID))

	return &transaction, nil
}

// emitProgressNotification resolves the investment the payment counts
// against (the referenced one, or the payer's first active investment) and
// emits an on-track or falling-behind notification. Absence of a relevant
// investment is not an error.
func (s *TransactionService) emitProgressNotification(transaction *domain.Transaction, paid float64) {
	var investment domain.Investment
	var err error

	if transaction.InvestmentID != nil {
		err = s.db.First(&investment, *transaction.InvestmentID).Error
	} else {
		err = s.db.
			Where("user_id = ? AND status = ?", transaction.UserID, domain.InvestmentStatusActive).
			Order("created_at ASC").
			First(&investment).Error
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[TRANSACTION] Progress lookup failed for transaction id=%d: %v", transaction.ID, err)
		}
		return
	}

	monthlyRequired := investment.Amount / monthlyInstallments
	if paid >= monthlyRequired {
		s.emitter.NotifyBestEffort(transaction.UserID,
			fmt.Sprintf("Great progress! Your payment of %.2f towards %q meets this month's target of %.2f.",
				paid, investment.Title, monthlyRequired))
	} else {
		s.emitter.NotifyBestEffort(transaction.UserID,
			fmt.Sprintf("You are falling behind on %q: this payment of %.2f is below the monthly target of %.2f.",
				investment.Title, paid, monthlyRequired))
	}
}

// List returns transactions, optionally filtered by owner and/or investment,
// newest first
func (s *TransactionService) List(ownerID, investmentID *uint, skip, limit int) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	query := s.db.Order("date DESC")

	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}
	if investmentID != nil {
		query = query.Where("investment_id = ?", *investmentID)
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

	if err := query.Find(&transactions).Error; err != nil {
		log.Printf("[TRANSACTION] List failed: database error: %v", err)
		return nil, apperrors.Internal("failed to list transactions", err)
	}

	return transactions, nil
}
