package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/db"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// UpsertPermission inserts or refreshes a permission in a single statement
// keyed on the (route, method) unique index. `xmax = 0` distinguishes a fresh
// insert from a conflict update.
func (r *PGRepository) UpsertPermission(ctx context.Context, p Permission) (Permission, bool, error) {
	const query = `
		INSERT INTO permissions (route, method, name, description, category, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		ON CONFLICT (route, method) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    category = EXCLUDED.category,
		    is_active = TRUE,
		    updated_at = NOW()
		RETURNING id, route, method, name, description, category, is_active, created_at, updated_at, (xmax = 0)`
	var out Permission
	var created bool
	err := r.pool.QueryRow(ctx, query, p.Route, p.Method, p.Name, p.Description, p.Category).Scan(
		&out.ID, &out.Route, &out.Method, &out.Name, &out.Description, &out.Category,
		&out.IsActive, &out.CreatedAt, &out.UpdatedAt, &created,
	)
	if err != nil {
		return Permission{}, false, err
	}
	return out, created, nil
}

// ListPermissions returns a page of permissions plus the unfiltered total,
// optionally restricted to one category.
func (r *PGRepository) ListPermissions(ctx context.Context, filter PermissionFilter) ([]Permission, int, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM permissions WHERE ($1 = '' OR category = $1)`, filter.Category,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, route, method, name, description, category, is_active, created_at, updated_at
		FROM permissions
		WHERE ($1 = '' OR category = $1)
		ORDER BY route, method
		LIMIT $2 OFFSET $3`, filter.Category, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	perms, err := scanPermissions(rows)
	if err != nil {
		return nil, 0, err
	}
	return perms, total, nil
}

// ActivePermissions returns every active permission in catalog order.
func (r *PGRepository) ActivePermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, route, method, name, description, category, is_active, created_at, updated_at
		FROM permissions WHERE is_active ORDER BY route, method`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// SetPermissionActive toggles a single permission by id.
func (r *PGRepository) SetPermissionActive(ctx context.Context, id int64, active bool) (Permission, error) {
	var out Permission
	err := r.pool.QueryRow(ctx, `
		UPDATE permissions SET is_active = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, route, method, name, description, category, is_active, created_at, updated_at`,
		id, active,
	).Scan(&out.ID, &out.Route, &out.Method, &out.Name, &out.Description, &out.Category,
		&out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Permission{}, ErrNotFound
	}
	if err != nil {
		return Permission{}, err
	}
	return out, nil
}

// UpsertSystemRole creates or refreshes a system role by name, preserving
// is_system on conflict.
func (r *PGRepository) UpsertSystemRole(ctx context.Context, name, description string) (Role, bool, error) {
	const query = `
		INSERT INTO roles (name, description, is_system, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, TRUE, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    is_system = TRUE,
		    updated_at = NOW()
		RETURNING id, name, description, is_system, is_active, created_at, updated_at, (xmax = 0)`
	var out Role
	var created bool
	err := r.pool.QueryRow(ctx, query, name, description).Scan(
		&out.ID, &out.Name, &out.Description, &out.IsSystem, &out.IsActive,
		&out.CreatedAt, &out.UpdatedAt, &created,
	)
	if err != nil {
		return Role{}, false, err
	}
	return out, created, nil
}

// ReplaceRolePermissions swaps a role's permission list inside one
// transaction so readers never observe a half-written role.
func (r *PGRepository) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
				roleID, pid,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// RoleByName fetches a role and its permission ids.
func (r *PGRepository) RoleByName(ctx context.Context, name string) (Role, error) {
	var out Role
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, is_system, is_active, created_at, updated_at
		FROM roles WHERE name = $1`, name,
	).Scan(&out.ID, &out.Name, &out.Description, &out.IsSystem, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, ErrNotFound
	}
	if err != nil {
		return Role{}, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT permission_id FROM role_permissions WHERE role_id = $1 ORDER BY permission_id`, out.ID)
	if err != nil {
		return Role{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			return Role{}, err
		}
		out.PermissionIDs = append(out.PermissionIDs, pid)
	}
	return out, rows.Err()
}

// PermissionsForRole returns the active permissions granted to a role.
func (r *PGRepository) PermissionsForRole(ctx context.Context, roleName string) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.route, p.method, p.name, p.description, p.category, p.is_active, p.created_at, p.updated_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN roles ro ON ro.id = rp.role_id
		WHERE ro.name = $1 AND p.is_active
		ORDER BY p.route, p.method`, roleName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// BumpPolicyVersion records a new policy generation and returns it.
func (r *PGRepository) BumpPolicyVersion(ctx context.Context) (int64, error) {
	var version int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO policy_versions (created_at) VALUES (NOW()) RETURNING id`,
	).Scan(&version)
	return version, err
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Route, &p.Method, &p.Name, &p.Description, &p.Category,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
