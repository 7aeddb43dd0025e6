package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// Service implements invoicing rules.
type Service struct {
	repo        RepositoryPort
	idempotency *shared.IdempotencyStore
}

// NewService constructs a Service. The idempotency store may be nil in tests.
func NewService(repo RepositoryPort, idempotency *shared.IdempotencyStore) *Service {
	return &Service{repo: repo, idempotency: idempotency}
}

// List returns a filtered page of invoices.
func (s *Service) List(ctx context.Context, filter Filter) ([]Invoice, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Get returns one invoice.
func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

// Create issues a new invoice. A non-empty idempotency key guards against
// duplicate submissions of the same bill.
func (s *Service) Create(ctx context.Context, inv Invoice, idempotencyKey string) (Invoice, error) {
	if inv.PatientID <= 0 {
		return Invoice{}, fmt.Errorf("%w: patient is required", httpx.ErrValidation)
	}
	if len(inv.Items) == 0 {
		return Invoice{}, fmt.Errorf("%w: at least one line item is required", httpx.ErrValidation)
	}

	inv.Currency = strings.ToUpper(strings.TrimSpace(inv.Currency))
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	if _, err := currency.ParseISO(inv.Currency); err != nil {
		return Invoice{}, fmt.Errorf("%w: unknown currency %q", httpx.ErrValidation, inv.Currency)
	}

	inv.TotalCents = 0
	for _, item := range inv.Items {
		if item.Quantity <= 0 || item.UnitCents < 0 {
			return Invoice{}, fmt.Errorf("%w: invalid line item %q", httpx.ErrValidation, item.Description)
		}
		inv.TotalCents += item.Total()
	}
	inv.Status = StatusPending

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, "billing"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Invoice{}, fmt.Errorf("%w: invoice already submitted", httpx.ErrDuplicate)
			}
			return Invoice{}, err
		}
	}

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return Invoice{}, err
	}
	created.Display = FormatAmount(created.Currency, created.TotalCents)
	return created, nil
}
