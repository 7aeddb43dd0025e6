package rbac

import "context"

// PermissionFilter narrows permission listings.
type PermissionFilter struct {
	Category string
	Page     int
	PerPage  int
}

// Repository defines the persistence operations the RBAC pipeline needs.
// Upserts are atomic on the natural unique index (route+method for
// permissions, name for roles); the bool result reports whether the row was
// inserted rather than updated.
type Repository interface {
	UpsertPermission(ctx context.Context, p Permission) (Permission, bool, error)
	ListPermissions(ctx context.Context, filter PermissionFilter) ([]Permission, int, error)
	ActivePermissions(ctx context.Context) ([]Permission, error)
	SetPermissionActive(ctx context.Context, id int64, active bool) (Permission, error)

	UpsertSystemRole(ctx context.Context, name, description string) (Role, bool, error)
	ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	RoleByName(ctx context.Context, name string) (Role, error)
	PermissionsForRole(ctx context.Context, roleName string) ([]Permission, error)

	BumpPolicyVersion(ctx context.Context) (int64, error)
}
