// Package roles manages custom roles through the admin API. The four system
// templates are owned by the rbac bootstrap and reject mutation here.
package roles

import (
	"errors"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
)

// ErrSystemRole rejects edits and deletes against built-in role templates.
var ErrSystemRole = errors.New("system roles cannot be modified or deleted")

// RoleView is a role optionally populated with its permissions.
type RoleView struct {
	rbac.Role
	Permissions []rbac.Permission `json:"permissions,omitempty"`
}
