package billing

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

// RepositoryPort defines persistence operations for invoices.
type RepositoryPort interface {
	List(ctx context.Context, filter Filter) ([]Invoice, int, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	Create(ctx context.Context, inv Invoice) (Invoice, error)
}

// Repository is the PostgreSQL implementation. Line items are stored as a
// jsonb column; totals are denormalized for listing queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceSelect = `
	SELECT i.id, i.patient_id, p.first_name || ' ' || p.last_name,
	       i.currency, i.items, i.total_cents, i.status, i.issued_at,
	       i.created_at, i.updated_at
	FROM invoices i
	JOIN patients p ON p.id = i.patient_id`

// List returns invoices matching the filter.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Invoice, int, error) {
	var conds []string
	var args []any
	if filter.PatientID > 0 {
		args = append(args, filter.PatientID)
		conds = append(conds, fmt.Sprintf("i.patient_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("i.status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices i"+where, args...).Scan(&total); err != nil {
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

	rows, err := r.pool.Query(ctx, invoiceSelect+where+
		fmt.Sprintf(" ORDER BY i.issued_at DESC, i.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

// Get returns one invoice.
func (r *Repository) Get(ctx context.Context, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, invoiceSelect+" WHERE i.id = $1", id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, httpx.ErrNotFound
	}
	return inv, err
}

// Create inserts an invoice row.
func (r *Repository) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return Invoice{}, err
	}
	now := time.Now().UTC()
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = now
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO invoices (patient_id, currency, items, total_cents, status, issued_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`,
		inv.PatientID, inv.Currency, items, inv.TotalCents, inv.Status, inv.IssuedAt.UTC(), now,
	).Scan(&inv.ID)
	if err != nil {
		return Invoice{}, err
	}
	return r.Get(ctx, inv.ID)
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var items []byte
	err := row.Scan(&inv.ID, &inv.PatientID, &inv.PatientName, &inv.Currency, &items,
		&inv.TotalCents, &inv.Status, &inv.IssuedAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return Invoice{}, err
		}
	}
	inv.Display = FormatAmount(inv.Currency, inv.TotalCents)
	return inv, nil
}

var _ RepositoryPort = (*Repository)(nil)
