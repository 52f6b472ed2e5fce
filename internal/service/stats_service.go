package service

import (
	"context"

	"github.com/noah-isme/spi-admin-api/internal/models"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type statsRepository interface {
	Totals(ctx context.Context) (*models.Stats, error)
	Ping(ctx context.Context) error
}

// StatsService serves dashboard counters and readiness checks.
type StatsService struct {
	repo statsRepository
}

// NewStatsService creates an instance of StatsService.
func NewStatsService(repo statsRepository) *StatsService {
	return &StatsService{repo: repo}
}

// Totals returns the record counts. Every stored student counts as active.
func (s *StatsService) Totals(ctx context.Context) (*models.Stats, error) {
	stats, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load stats")
	}
	stats.ActiveStudents = stats.TotalStudents
	return stats, nil
}

// Ready reports whether the database is reachable.
func (s *StatsService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
