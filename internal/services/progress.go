package services

import (
	"log"
	"math"

	"crestmont/internal/domain"
	apperrors "crestmont/pkg/errors"

	"gorm.io/gorm"
)

// ProgressService derives per-investor and portfolio-wide completion figures
// from the current ledger state. It never writes; every computation is a
// pure function of the stored investments and transactions and is safe to
// call concurrently.
type ProgressService struct {
	db *gorm.DB
}

// NewProgressService creates a new progress service
func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

// ProgressReport holds one investor's derived figures
type ProgressReport struct {
	UserID          uint    `json:"user_id"`
	TotalInvestment float64 `json:"total_investment"`
	TotalPaid       float64 `json:"total_paid"`
	ProgressPercent float64 `json:"progress_percent"`
}

// PortfolioReport aggregates every investor's report plus portfolio totals
type PortfolioReport struct {
	Investors       []ProgressReport `json:"investors"`
	TotalInvestment float64          `json:"total_investment"`
	TotalCollected  float64          `json:"total_collected"`
	OverallPercent  float64          `json:"overall_percent"`
}

// ProgressPercent computes the bounded completion percentage: zero when
// nothing is committed, otherwise paid/committed rounded to exactly one
// decimal digit and clamped to 100 (overpayment is clamped, not reported).
func ProgressPercent(totalPaid, totalInvestment float64) float64 {
	if totalInvestment == 0 {
		return 0
	}
	percent := math.Round(totalPaid/totalInvestment*1000) / 10
	return math.Min(percent, 100)
}

// ComputeForUser derives the investor's report. totalInvestment sums every
// investment regardless of status (committed capital includes PENDING
// allocations); totalPaid sums COMPLETED PAYMENT transactions, optionally
// restricted to those linked to an investment.
func (s *ProgressService) ComputeForUser(userID uint, linkedOnly bool) (*ProgressReport, error) {
	var totalInvestment float64
	if err := s.db.Model(&domain.Investment{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalInvestment).Error; err != nil {
		log.Printf("[PROGRESS] ComputeForUser failed: investment sum error: %v", err)
		return nil, apperrors.Internal("failed to sum investments", err)
	}

	totalPaid, err := s.sumPayments(userID, linkedOnly)
	if err != nil {
		return nil, err
	}

	return &ProgressReport{
		UserID:          userID,
		TotalInvestment: totalInvestment,
		TotalPaid:       totalPaid,
		ProgressPercent: ProgressPercent(totalPaid, totalInvestment),
	}, nil
}

// ComputeAll derives the report for every investor, ordered by user id, plus
// portfolio-wide totals under the same clamp and zero-division rules
func (s *ProgressService) ComputeAll(linkedOnly bool) (*PortfolioReport, error) {
	var users []domain.User
	if err := s.db.Where("is_admin = ?", false).Order("id ASC").Find(&users).Error; err != nil {
		log.Printf("[PROGRESS] ComputeAll failed: user list error: %v", err)
		return nil, apperrors.Internal("failed to list investors", err)
	}

	report := &PortfolioReport{Investors: make([]ProgressReport, 0, len(users))}
	for _, user := range users {
		investor, err := s.ComputeForUser(user.ID, linkedOnly)
		if err != nil {
			return nil, err
		}
		report.Investors = append(report.Investors, *investor)
		report.TotalInvestment += investor.TotalInvestment
		report.TotalCollected += investor.TotalPaid
	}

	report.OverallPercent = ProgressPercent(report.TotalCollected, report.TotalInvestment)
	return report, nil
}

func (s *ProgressService) sumPayments(userID uint, linkedOnly bool) (float64, error) {
	query := s.db.Model(&domain.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ?",
			userID, domain.TransactionTypePayment, domain.TransactionStatusCompleted)
	if linkedOnly {
		query = query.Where("investment_id IS NOT NULL")
	}

	var totalPaid float64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&totalPaid).Error; err != nil {
		log.Printf("[PROGRESS] Payment sum failed for user=%d: %v", userID, err)
		return 0, apperrors.Internal("failed to sum payments", err)
	}
	return totalPaid, nil
}
