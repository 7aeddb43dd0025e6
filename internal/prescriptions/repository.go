package prescriptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
)

// RepositoryPort defines persistence operations for prescriptions.
type RepositoryPort interface {
	List(ctx context.Context, filter Filter) ([]Prescription, int, error)
	Get(ctx context.Context, id int64) (Prescription, error)
	Create(ctx context.Context, p Prescription) (Prescription, error)
}

// Repository is the PostgreSQL implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const prescriptionSelect = `
	SELECT pr.id, pr.patient_id, p.first_name || ' ' || p.last_name,
	       pr.doctor_id, COALESCE(u.first_name || ' ' || u.last_name, ''),
	       pr.medications, COALESCE(pr.notes, ''), pr.issued_at, pr.created_at
	FROM prescriptions pr
	JOIN patients p ON p.id = pr.patient_id
	LEFT JOIN users u ON u.id = pr.doctor_id`

// List returns prescriptions matching the filter.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Prescription, int, error) {
	var conds []string
	var args []any
	if filter.PatientID > 0 {
		args = append(args, filter.PatientID)
		conds = append(conds, fmt.Sprintf("pr.patient_id = $%d", len(args)))
	}
	if filter.DoctorID > 0 {
		args = append(args, filter.DoctorID)
		conds = append(conds, fmt.Sprintf("pr.doctor_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM prescriptions pr"+where, args...).Scan(&total); err != nil {
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

	rows, err := r.pool.Query(ctx, prescriptionSelect+where+
		fmt.Sprintf(" ORDER BY pr.issued_at DESC, pr.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Get returns one prescription.
func (r *Repository) Get(ctx context.Context, id int64) (Prescription, error) {
	row := r.pool.QueryRow(ctx, prescriptionSelect+" WHERE pr.id = $1", id)
	p, err := scanPrescription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Prescription{}, httpx.ErrNotFound
	}
	return p, err
}

// Create inserts a prescription row.
func (r *Repository) Create(ctx context.Context, p Prescription) (Prescription, error) {
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return Prescription{}, err
	}
	now := time.Now().UTC()
	if p.IssuedAt.IsZero() {
		p.IssuedAt = now
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO prescriptions (patient_id, doctor_id, medications, notes, issued_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.PatientID, p.DoctorID, meds, p.Notes, p.IssuedAt.UTC(), now,
	).Scan(&p.ID)
	if err != nil {
		return Prescription{}, err
	}
	return r.Get(ctx, p.ID)
}

func scanPrescription(row pgx.Row) (Prescription, error) {
	var p Prescription
	var meds []byte
	err := row.Scan(&p.ID, &p.PatientID, &p.PatientName, &p.DoctorID, &p.DoctorName,
		&meds, &p.Notes, &p.IssuedAt, &p.CreatedAt)
	if err != nil {
		return Prescription{}, err
	}
	if len(meds) > 0 {
		if err := json.Unmarshal(meds, &p.Medications); err != nil {
			return Prescription{}, err
		}
	}
	return p, nil
}

var _ RepositoryPort = (*Repository)(nil)
