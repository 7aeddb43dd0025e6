package prescriptions

import (
	"context"
	"fmt"
	"strings"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// Service implements prescription rules. Prescriptions are immutable once
// issued; corrections are made by issuing a new one.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a filtered page of prescriptions.
func (s *Service) List(ctx context.Context, filter Filter) ([]Prescription, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Get returns one prescription.
func (s *Service) Get(ctx context.Context, id int64) (Prescription, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and issues a prescription.
func (s *Service) Create(ctx context.Context, p Prescription) (Prescription, error) {
	if p.PatientID <= 0 || p.DoctorID <= 0 {
		return Prescription{}, fmt.Errorf("%w: patient and doctor are required", httpx.ErrValidation)
	}
	if len(p.Medications) == 0 {
		return Prescription{}, fmt.Errorf("%w: at least one medication is required", httpx.ErrValidation)
	}
	for i := range p.Medications {
		p.Medications[i].Name = strings.TrimSpace(p.Medications[i].Name)
		if p.Medications[i].Name == "" {
			return Prescription{}, fmt.Errorf("%w: medication name is required", httpx.ErrValidation)
		}
		if p.Medications[i].Dosage == "" {
			return Prescription{}, fmt.Errorf("%w: dosage is required for %s", httpx.ErrValidation, p.Medications[i].Name)
		}
	}
	return s.repo.Create(ctx, p)
}
