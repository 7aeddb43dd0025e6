package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// Service provides user administration and profile operations.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of users with their role names.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	items, total, err := s.repo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, perPage, total), nil
}

// AssignRole reassigns a user's role. Both the user and the target role must
// exist; the session of the affected user keeps its old role claim until the
// next login.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) (User, error) {
	if userID <= 0 || roleID <= 0 {
		return User{}, fmt.Errorf("%w: user and role ids are required", httpx.ErrValidation)
	}
	return s.repo.AssignRole(ctx, userID, roleID)
}

// Profile returns the caller's own profile.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// UpdateProfile lets the caller change name and phone. Email and role are not
// self-editable.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, firstName, lastName, phone string) (Profile, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return Profile{}, fmt.Errorf("%w: first name is required", httpx.ErrValidation)
	}
	return s.repo.UpdateProfile(ctx, userID, firstName, lastName, strings.TrimSpace(phone))
}
