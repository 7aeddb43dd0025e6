package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
)

// RepositoryPort defines persistence operations for inventory.
type RepositoryPort interface {
	List(ctx context.Context, filter Filter) ([]Item, int, error)
	Get(ctx context.Context, id int64) (Item, error)
	UpdateStock(ctx context.Context, id int64, quantity, reorderLevel int) (Item, error)
}

// Repository is the PostgreSQL implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, name, sku, quantity, reorder_level, COALESCE(unit, ''), updated_at`

// List returns inventory items matching the filter.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Item, int, error) {
	search := "%" + filter.Search + "%"

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_items
		WHERE ($1 = '%%' OR name ILIKE $1 OR sku ILIKE $1)
		  AND (NOT $2 OR quantity <= reorder_level)`,
		search, filter.LowOnly).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE ($1 = '%%' OR name ILIKE $1 OR sku ILIKE $1)
		  AND (NOT $2 OR quantity <= reorder_level)
		ORDER BY name, id
		LIMIT $3 OFFSET $4`, search, filter.LowOnly, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}

// Get returns one item.
func (r *Repository) Get(ctx context.Context, id int64) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, httpx.ErrNotFound
	}
	return item, err
}

// UpdateStock adjusts quantity and reorder level for an item.
func (r *Repository) UpdateStock(ctx context.Context, id int64, quantity, reorderLevel int) (Item, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE inventory_items
		SET quantity = $1, reorder_level = $2, updated_at = $3
		WHERE id = $4`,
		quantity, reorderLevel, time.Now().UTC(), id)
	if err != nil {
		return Item{}, err
	}
	if tag.RowsAffected() == 0 {
		return Item{}, httpx.ErrNotFound
	}
	return r.Get(ctx, id)
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Name, &item.SKU, &item.Quantity, &item.ReorderLevel,
		&item.Unit, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	item.LowStock = item.Quantity <= item.ReorderLevel
	return item, nil
}

var _ RepositoryPort = (*Repository)(nil)
