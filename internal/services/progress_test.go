package services

import (
	"testing"
	"time"

	"crestmont/internal/domain"
)

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name  string
		paid  float64
		total float64
		want  float64
	}{
		{"zero total", 500, 0, 0},
		{"nothing paid", 0, 1000, 0},
		{"one third", 1000, 3000, 33.3},
		{"exact half", 500, 1000, 50},
		{"rounds to one decimal", 1, 3, 33.3},
		{"rounds up", 2, 3, 66.7},
		{"complete", 1000, 1000, 100},
		{"overpayment clamps", 1500, 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProgressPercent(tt.paid, tt.total)
			if got != tt.want {
				t.Errorf("ProgressPercent(%v, %v) = %v, want %v", tt.paid, tt.total, got, tt.want)
			}
		})
	}
}

func TestComputeForUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)

	investments := []domain.Investment{
		{Title: "A", Amount: 2000, Status: domain.InvestmentStatusActive, StartDate: time.Now(), UserID: 1},
		{Title: "B", Amount: 1000, Status: domain.InvestmentStatusPending, StartDate: time.Now().AddDate(0, 1, 0), UserID: 1},
		{Title: "C", Amount: 9000, Status: domain.InvestmentStatusActive, StartDate: time.Now(), UserID: 2},
	}
	for i := range investments {
		if err := db.Create(&investments[i]).Error; err != nil {
			t.Fatalf("failed to seed investment: %v", err)
		}
	}

	transactions := []domain.Transaction{
		{Type: domain.TransactionTypePayment, Status: domain.TransactionStatusCompleted, Amount: 600, UserID: 1},
		{Type: domain.TransactionTypePayment, Status: domain.TransactionStatusCompleted, Amount: 400, UserID: 1},
		{Type: domain.TransactionTypePayment, Status: domain.TransactionStatusFailed, Amount: 999, UserID: 1},
		{Type: domain.TransactionTypeDeposit, Status: domain.TransactionStatusCompleted, Amount: 500, UserID: 1},
		{Type: domain.TransactionTypePayment, Status: domain.TransactionStatusCompleted, Amount: 100, UserID: 2},
	}
	for i := range transactions {
		if err := db.Create(&transactions[i]).Error; err != nil {
			t.Fatalf("failed to seed transaction: %v", err)
		}
	}

	report, err := svc.ComputeForUser(1, false)
	if err != nil {
		t.Fatalf("ComputeForUser failed: %v", err)
	}

	// Pending allocations count as committed capital; failed payments and
	// deposits do not count as paid.
	if report.TotalInvestment != 3000 {
		t.Errorf("expected total investment 3000, got %v", report.TotalInvestment)
	}
	if report.TotalPaid != 1000 {
		t.Errorf("expected total paid 1000, got %v", report.TotalPaid)
	}
	if report.ProgressPercent != 33.3 {
		t.Errorf("expected 33.3 percent, got %v", report.ProgressPercent)
	}
}

func TestComputeForUserLinkedOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)

	inv := domain.Investment{Title: "A", Amount: 1000, Status: domain.InvestmentStatusActive, StartDate: time.Now(), UserID: 1}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("failed to seed investment: %v", err)
	}

	linked := domain.Transaction{Type: domain.TransactionTypePayment, Status: domain.TransactionStatusCompleted, Amount: 300, UserID: 1, InvestmentID: &inv.ID}
	unlinked := domain.Transaction{Type: domain.TransactionTypePayment, Status: domain.TransactionStatusCompleted, Amount: 200, UserID: 1}
	if err := db.Create(&linked).Error; err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}
	if err := db.Create(&unlinked).Error; err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}

	report, err := svc.ComputeForUser(1, true)
	if err != nil {
		t.Fatalf("ComputeForUser failed: %v", err)
	}
	if report.TotalPaid != 300 {
		t.Errorf("expected linked-only paid 300, got %v", report.TotalPaid)
	}

	report, err = svc.ComputeForUser(1, false)
	if err != nil {
		t.Fatalf("ComputeForUser failed: %v", err)
	}
	if report.TotalPaid != 500 {
		t.Errorf("expected total paid 500, got %v", report.TotalPaid)
	}
}

func TestComputeForUserEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)

	report, err := svc.ComputeForUser(42, false)
	if err != nil {
		t.Fatalf("ComputeForUser failed: %v", err)
	}
	if report.TotalInvestment != 0 || report.TotalPaid != 0 || report.ProgressPercent != 0 {
		t.Errorf("expected all-zero report, got %+v", report)
	}
}

func TestComputeAll(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)

	users := []domain.User{
		{Username: "alice", Email: "alice@example.com", HashedPassword: "x", IsActive: true},
		{Username: "bob", Email: "bob@example.com", HashedPassword: "x", IsActive: true},
		{Username: "admin", Email: "admin@example.com", HashedPassword: "x", IsActive: true, IsAdmin: true},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	investments := []domain.Investment{
		{Title: "A", Amount: 1000, Status: domain.InvestmentStatusActive, StartDate: time.Now(), UserID: users[0].ID},
		{Title: "B", Amount: 3000, Status: domain.InvestmentStatusActive, StartDate: time.Now(), UserID: users[1].ID},
	}
	for i := range investments {
		if err := db.Create(&investments[i]).Error; err != nil {
			t.Fatalf("failed to seed investment: %v", err)
		}
	}

	payments := []domain.Transaction{
		{Type: domain.TransactionTypePayment, Status: domain.TransactionStatusCompleted, Amount: 500, UserID: users[0].ID},
		{Type: domain.TransactionTypePayment, Status: domain.TransactionStatusCompleted, Amount: 1500, UserID: users[1].ID},
	}
	for i := range payments {
		if err := db.Create(&payments[i]).Error; err != nil {
			t.Fatalf("failed to seed payment: %v", err)
		}
	}

	report, err := svc.ComputeAll(false)
	if err != nil {
		t.Fatalf("ComputeAll failed: %v", err)
	}

	if len(report.Investors) != 2 {
		t.Fatalf("expected 2 investors (admin excluded), got %d", len(report.Investors))
	}
	if report.Investors[0].UserID != users[0].ID {
		t.Errorf("expected investors ordered by id, first was %d", report.Investors[0].UserID)
	}
	if report.TotalInvestment != 4000 {
		t.Errorf("expected portfolio total 4000, got %v", report.TotalInvestment)
	}
	if report.TotalCollected != 2000 {
		t.Errorf("expected portfolio collected 2000, got %v", report.TotalCollected)
	}
	if report.OverallPercent != 50 {
		t.Errorf("expected overall 50 percent, got %v", report.OverallPercent)
	}
}
