package services

import (
	"context"
	"time"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// HealthService reports process liveness for the health endpoints.
type HealthService struct {
	startedAt time.Time
}

// NewHealthService creates a health service.
func NewHealthService() *HealthService {
	return &HealthService{startedAt: time.Now()}
}

// HealthStatus is the health endpoint response body.
type HealthStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeSec int64  `json:"uptime_seconds"`
}

// HealthCheck returns the current liveness status.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Version:   Version,
		UptimeSec: int64(time.Since(s.startedAt).Seconds()),
	}
}
