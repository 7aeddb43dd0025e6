package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort computes dashboard aggregates.
type RepositoryPort interface {
	Summary(ctx context.Context) (Summary, error)
}

// Repository is the PostgreSQL implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summary runs the aggregate queries in one round trip.
func (r *Repository) Summary(ctx context.Context) (Summary, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekEnd := dayStart.AddDate(0, 0, 7)

	var s Summary
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM appointments
				WHERE scheduled_at >= $1 AND scheduled_at < $1 + interval '1 day'
				  AND status = 'scheduled'),
			(SELECT COUNT(*) FROM appointments
				WHERE scheduled_at >= $1 AND scheduled_at < $2
				  AND status = 'scheduled'),
			(SELECT COUNT(*) FROM invoices WHERE status = 'pending'),
			(SELECT COALESCE(SUM(total_cents), 0) FROM invoices WHERE status = 'paid'),
			(SELECT COUNT(*) FROM inventory_items WHERE quantity <= reorder_level)`,
		dayStart, weekEnd,
	).Scan(&s.Patients, &s.AppointmentsToday, &s.AppointmentsWeek,
		&s.PendingInvoices, &s.RevenueCents, &s.LowStockItems)
	if err != nil {
		return Summary{}, err
	}
	s.GeneratedAt = now
	return s, nil
}

var _ RepositoryPort = (*Repository)(nil)
