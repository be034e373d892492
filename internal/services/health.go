package services

import (
	"crestmont/internal/database"
)

// HealthService implements the health check
type HealthService struct{}

// NewHealthService creates a new health service
func NewHealthService() *HealthService {
	return &HealthService{}
}

// HealthResult reports service and store health
type HealthResult struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Check reports healthy when the ledger store answers a ping
func (s *HealthService) Check() *HealthResult {
	status := "healthy"
	if err := database.HealthCheck(); err != nil {
		status = "degraded"
	}
	return &HealthResult{
		Status:  status,
		Service: "Crestmont Investments API",
	}
}
