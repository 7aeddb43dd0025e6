package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
)

// Service handles role management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all roles, optionally populated with their permissions.
func (s *Service) List(ctx context.Context, populate bool) ([]RoleView, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		view := RoleView{Role: role}
		if populate {
			perms, err := s.repo.PermissionsByRoleID(ctx, role.ID)
			if err != nil {
				return nil, err
			}
			view.Permissions = perms
		}
		views = append(views, view)
	}
	return views, nil
}

// Create inserts a custom role. Names are trimmed; clashing with any existing
// role name, system ones included, is a conflict.
func (s *Service) Create(ctx context.Context, name, description string, permissionIDs []int64) (rbac.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return rbac.Role{}, fmt.Errorf("%w: role name required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, name, strings.TrimSpace(description), permissionIDs)
}

// Update mutates a custom role. System roles are declarative and recomputed
// by the seed pipeline, so any attempt to edit one fails without touching it.
func (s *Service) Update(ctx context.Context, id int64, name, description *string, permissionIDs []int64) (rbac.Role, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return rbac.Role{}, err
	}
	if existing.IsSystem {
		return rbac.Role{}, fmt.Errorf("%w: %s", ErrSystemRole, existing.Name)
	}

	newName := existing.Name
	if name != nil {
		newName = strings.TrimSpace(*name)
		if newName == "" {
			return rbac.Role{}, fmt.Errorf("%w: role name required", httpx.ErrValidation)
		}
	}
	newDescription := existing.Description
	if description != nil {
		newDescription = strings.TrimSpace(*description)
	}

	updated, err := s.repo.Update(ctx, id, newName, newDescription)
	if err != nil {
		return rbac.Role{}, err
	}
	if permissionIDs != nil {
		if err := s.repo.ReplacePermissions(ctx, id, permissionIDs); err != nil {
			return rbac.Role{}, err
		}
		updated.PermissionIDs = permissionIDs
	}
	return updated, nil
}

// Delete removes a custom role; system roles are refused.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("%w: %s", ErrSystemRole, existing.Name)
	}
	return s.repo.Delete(ctx, id)
}
