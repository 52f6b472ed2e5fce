package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/spi-admin-api/internal/models"
)

// StatsRepository reads dashboard counters.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals counts students, children and admins in one round trip.
func (r *StatsRepository) Totals(ctx context.Context) (*models.Stats, error) {
	const q = `SELECT
	(SELECT COUNT(*) FROM students) AS total_students,
	(SELECT COUNT(*) FROM student_children) AS total_children,
	(SELECT COUNT(*) FROM admins) AS total_admins`
	var stats models.Stats
	if err := r.db.GetContext(ctx, &stats, q); err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return &stats, nil
}

// Ping checks database connectivity.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
