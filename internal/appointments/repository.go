package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
)

// RepositoryPort defines persistence operations for appointments.
type RepositoryPort interface {
	List(ctx context.Context, filter Filter) ([]Appointment, int, error)
	Get(ctx context.Context, id int64) (Appointment, error)
	Create(ctx context.Context, a Appointment) (Appointment, error)
	Update(ctx context.Context, a Appointment) (Appointment, error)
	Delete(ctx context.Context, id int64) error
	Overlaps(ctx context.Context, doctorID int64, start time.Time, minutes int, excludeID int64) (bool, error)
}

// Repository is the PostgreSQL implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const appointmentSelect = `
	SELECT a.id, a.patient_id, p.first_name || ' ' || p.last_name, p.email,
	       a.doctor_id, COALESCE(u.first_name || ' ' || u.last_name, ''),
	       a.scheduled_at, a.duration_minutes, COALESCE(a.reason, ''), a.status,
	       COALESCE(a.notes, ''), a.created_at, a.updated_at
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	LEFT JOIN users u ON u.id = a.doctor_id`

// List returns appointments matching the filter with the total match count.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Appointment, int, error) {
	var conds []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.PatientID > 0 {
		add("a.patient_id = $%d", filter.PatientID)
	}
	if filter.DoctorID > 0 {
		add("a.doctor_id = $%d", filter.DoctorID)
	}
	if !filter.From.IsZero() {
		add("a.scheduled_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("a.scheduled_at < $%d", filter.To)
	}
	if filter.Status != "" {
		add("a.status = $%d", filter.Status)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM appointments a" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := appointmentSelect + where +
		fmt.Sprintf(" ORDER BY a.scheduled_at, a.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Get returns a single appointment.
func (r *Repository) Get(ctx context.Context, id int64) (Appointment, error) {
	row := r.pool.QueryRow(ctx, appointmentSelect+" WHERE a.id = $1", id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, httpx.ErrNotFound
	}
	return a, err
}

// Create inserts an appointment row.
func (r *Repository) Create(ctx context.Context, a Appointment) (Appointment, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, scheduled_at, duration_minutes,
			reason, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`,
		a.PatientID, a.DoctorID, a.ScheduledAt.UTC(), a.DurationMinutes,
		a.Reason, a.Status, a.Notes, now,
	).Scan(&a.ID)
	if err != nil {
		return Appointment{}, err
	}
	return r.Get(ctx, a.ID)
}

// Update overwrites the mutable fields of an appointment.
func (r *Repository) Update(ctx context.Context, a Appointment) (Appointment, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET patient_id = $1, doctor_id = $2, scheduled_at = $3, duration_minutes = $4,
			reason = $5, status = $6, notes = $7, updated_at = $8
		WHERE id = $9`,
		a.PatientID, a.DoctorID, a.ScheduledAt.UTC(), a.DurationMinutes,
		a.Reason, a.Status, a.Notes, time.Now().UTC(), a.ID)
	if err != nil {
		return Appointment{}, err
	}
	if tag.RowsAffected() == 0 {
		return Appointment{}, httpx.ErrNotFound
	}
	return r.Get(ctx, a.ID)
}

// Delete removes an appointment.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Overlaps reports whether the doctor already has a non-cancelled appointment
// intersecting the given window.
func (r *Repository) Overlaps(ctx context.Context, doctorID int64, start time.Time, minutes int, excludeID int64) (bool, error) {
	end := start.Add(time.Duration(minutes) * time.Minute)
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND status <> $2
			  AND id <> $3
			  AND scheduled_at < $4
			  AND scheduled_at + (duration_minutes || ' minutes')::interval > $5
		)`, doctorID, StatusCancelled, excludeID, end.UTC(), start.UTC()).Scan(&exists)
	return exists, err
}

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.PatientEmail,
		&a.DoctorID, &a.DoctorName, &a.ScheduledAt, &a.DurationMinutes, &a.Reason,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

var _ RepositoryPort = (*Repository)(nil)
