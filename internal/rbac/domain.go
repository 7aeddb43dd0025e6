// Package rbac implements the permission bootstrap pipeline and the
// per-request authorization gate: an explicit route catalog is synthesized
// into permission records, which are then assigned to the four built-in role
// templates. Roles marked as system roles are declarative and recomputed on
// every seed run.
package rbac

import "time"

// Permission is an atomic capability bound to exactly one (route, method)
// pair. The pair is the natural key and is enforced by a unique index.
type Permission struct {
	ID          int64     `json:"id"`
	Route       string    `json:"route"`
	Method      string    `json:"method"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Role is a named bundle of permissions. System roles are product-defined
// and reject mutation through the role-management surface.
type Role struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	IsSystem      bool      `json:"isSystem"`
	IsActive      bool      `json:"isActive"`
	PermissionIDs []int64   `json:"permissionIds,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Built-in role template names.
const (
	RoleMasterAdmin = "master_admin"
	RoleAdmin       = "admin"
	RoleDoctor      = "doctor"
	RolePatient     = "patient"
)

// SyncCounts reports created/updated totals for one seed phase.
type SyncCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// RouteStats summarises the catalog that fed a seed run.
type RouteStats struct {
	Scanned    int `json:"scanned"`
	Categories int `json:"categories"`
}

// SeedReport aggregates the outcome of a full bootstrap run.
type SeedReport struct {
	Permissions   SyncCounts `json:"permissions"`
	Roles         SyncCounts `json:"roles"`
	Routes        RouteStats `json:"routes"`
	PolicyVersion int64      `json:"policyVersion"`
}
