package patients

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// RepositoryPort defines persistence operations for patients.
type RepositoryPort interface {
	List(ctx context.Context, filter Filter) ([]Patient, int, error)
	Get(ctx context.Context, id int64) (Patient, error)
	GetByUserID(ctx context.Context, userID int64) (Patient, error)
	Create(ctx context.Context, p Patient) (Patient, error)
	Update(ctx context.Context, p Patient) (Patient, error)
	Delete(ctx context.Context, id int64) error
}

// Repository is the PostgreSQL implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const patientColumns = `
	id, user_id, first_name, last_name, email, COALESCE(phone, ''),
	date_of_birth, COALESCE(gender, ''), COALESCE(address, ''),
	COALESCE(blood_group, ''), COALESCE(allergies, ''), COALESCE(notes, ''),
	created_at, updated_at`

// List returns patients matching the filter plus the total match count.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Patient, int, error) {
	search := "%" + filter.Search + "%"

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM patients
		WHERE $1 = '%%' OR first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1`,
		search).Scan(&total)
	if err != nil {
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

	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE $1 = '%%' OR first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1
		ORDER BY last_name, first_name, id
		LIMIT $2 OFFSET $3`, search, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Get returns a patient by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	p, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, httpx.ErrNotFound
	}
	return p, err
}

// GetByUserID returns the patient record linked to a login account.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE user_id = $1`, userID)
	p, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, httpx.ErrNotFound
	}
	return p, err
}

// Create inserts a patient row.
func (r *Repository) Create(ctx context.Context, p Patient) (Patient, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients (user_id, first_name, last_name, email, phone, date_of_birth,
			gender, address, blood_group, allergies, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id, created_at, updated_at`,
		p.UserID, p.FirstName, p.LastName, p.Email, nullable(p.Phone), p.DateOfBirth,
		nullable(p.Gender), nullable(p.Address), nullable(p.BloodGroup),
		nullable(p.Allergies), nullable(p.Notes), now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Patient{}, httpx.ErrDuplicate
		}
		return Patient{}, err
	}
	return p, nil
}

// Update overwrites the mutable fields of a patient row.
func (r *Repository) Update(ctx context.Context, p Patient) (Patient, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET first_name = $1, last_name = $2, email = $3, phone = $4, date_of_birth = $5,
			gender = $6, address = $7, blood_group = $8, allergies = $9, notes = $10,
			updated_at = $11
		WHERE id = $12
		RETURNING created_at, updated_at`,
		p.FirstName, p.LastName, p.Email, nullable(p.Phone), p.DateOfBirth,
		nullable(p.Gender), nullable(p.Address), nullable(p.BloodGroup),
		nullable(p.Allergies), nullable(p.Notes), time.Now().UTC(), p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, httpx.ErrNotFound
	}
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Patient{}, httpx.ErrDuplicate
		}
		return Patient{}, err
	}
	return p, nil
}

// Delete removes a patient row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.DateOfBirth, &p.Gender, &p.Address, &p.BloodGroup, &p.Allergies, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ RepositoryPort = (*Repository)(nil)
