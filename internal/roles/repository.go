package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
)

// RepositoryPort defines data access methods for role management.
type RepositoryPort interface {
	List(ctx context.Context) ([]rbac.Role, error)
	Get(ctx context.Context, id int64) (rbac.Role, error)
	Create(ctx context.Context, name, description string, permissionIDs []int64) (rbac.Role, error)
	Update(ctx context.Context, id int64, name, description string) (rbac.Role, error)
	ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	Delete(ctx context.Context, id int64) error
	PermissionsByRoleID(ctx context.Context, roleID int64) ([]rbac.Permission, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, name, description, is_system, is_active, created_at, updated_at`

// List returns all roles ordered by name.
func (r *Repository) List(ctx context.Context) ([]rbac.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []rbac.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Get fetches a role by ID.
func (r *Repository) Get(ctx context.Context, id int64) (rbac.Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return rbac.Role{}, fmt.Errorf("%w: role %d", httpx.ErrNotFound, id)
	}
	return role, err
}

// Create inserts a custom (non-system) role with its permission list.
func (r *Repository) Create(ctx context.Context, name, description string, permissionIDs []int64) (rbac.Role, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return rbac.Role{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO roles (name, description, is_system, is_active, created_at, updated_at)
		VALUES ($1, $2, FALSE, TRUE, NOW(), NOW())
		RETURNING `+roleColumns, name, description)
	role, err := scanRole(row)
	if err != nil {
		if isUniqueViolation(err) {
			return rbac.Role{}, fmt.Errorf("%w: role name %q already exists", httpx.ErrDuplicate, name)
		}
		return rbac.Role{}, err
	}
	for _, pid := range permissionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id, created_at) VALUES ($1, $2, NOW())`,
			role.ID, pid,
		); err != nil {
			return rbac.Role{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return rbac.Role{}, err
	}
	role.PermissionIDs = permissionIDs
	return role, nil
}

// Update changes name/description of an existing role.
func (r *Repository) Update(ctx context.Context, id int64, name, description string) (rbac.Role, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE roles SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+roleColumns, id, name, description)
	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return rbac.Role{}, fmt.Errorf("%w: role %d", httpx.ErrNotFound, id)
	}
	if err != nil && isUniqueViolation(err) {
		return rbac.Role{}, fmt.Errorf("%w: role name %q already exists", httpx.ErrDuplicate, name)
	}
	return role, err
}

// ReplacePermissions swaps a role's permission list transactionally.
func (r *Repository) ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return err
	}
	for _, pid := range permissionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id, created_at) VALUES ($1, $2, NOW())`,
			roleID, pid,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Delete removes a role by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: role %d", httpx.ErrNotFound, id)
	}
	return nil
}

// PermissionsByRoleID loads the permissions referenced by a role.
func (r *Repository) PermissionsByRoleID(ctx context.Context, roleID int64) ([]rbac.Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.route, p.method, p.name, p.description, p.category, p.is_active, p.created_at, p.updated_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.route, p.method`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []rbac.Permission
	for rows.Next() {
		var p rbac.Permission
		if err := rows.Scan(&p.ID, &p.Route, &p.Method, &p.Name, &p.Description, &p.Category,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func scanRole(row pgx.Row) (rbac.Role, error) {
	var role rbac.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem, &role.IsActive,
		&role.CreatedAt, &role.UpdatedAt)
	return role, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ RepositoryPort = (*Repository)(nil)
