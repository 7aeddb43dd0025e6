package patients

import (
	"context"
	"fmt"
	"strings"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// Service implements patient business rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a filtered page of patients.
func (s *Service) List(ctx context.Context, filter Filter) ([]Patient, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Get returns one patient.
func (s *Service) Get(ctx context.Context, id int64) (Patient, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a new patient.
func (s *Service) Create(ctx context.Context, p Patient) (Patient, error) {
	if err := normalize(&p); err != nil {
		return Patient{}, err
	}
	return s.repo.Create(ctx, p)
}

// Update validates and persists changes to an existing patient.
func (s *Service) Update(ctx context.Context, p Patient) (Patient, error) {
	if p.ID <= 0 {
		return Patient{}, fmt.Errorf("%w: patient id is required", httpx.ErrValidation)
	}
	if err := normalize(&p); err != nil {
		return Patient{}, err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a patient record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// SelfProfile returns the patient record linked to the given account.
func (s *Service) SelfProfile(ctx context.Context, userID int64) (Patient, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// UpdateSelfProfile lets a patient edit their own contact details. Clinical
// fields (blood group, allergies, notes) stay staff-managed.
func (s *Service) UpdateSelfProfile(ctx context.Context, userID int64, phone, address string) (Patient, error) {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return Patient{}, err
	}
	existing.Phone = strings.TrimSpace(phone)
	existing.Address = strings.TrimSpace(address)
	return s.repo.Update(ctx, existing)
}

func normalize(p *Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", httpx.ErrValidation)
	}
	if p.Email == "" {
		return fmt.Errorf("%w: email is required", httpx.ErrValidation)
	}
	return nil
}
