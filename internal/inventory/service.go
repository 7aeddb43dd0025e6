package inventory

import (
	"context"
	"fmt"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// Service implements inventory rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a filtered page of inventory items.
func (s *Service) List(ctx context.Context, filter Filter) ([]Item, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// UpdateStock adjusts an item's stock level. Negative quantities are rejected;
// zero is valid and flags the item as low stock.
func (s *Service) UpdateStock(ctx context.Context, id int64, quantity, reorderLevel int) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("%w: item id is required", httpx.ErrValidation)
	}
	if quantity < 0 || reorderLevel < 0 {
		return Item{}, fmt.Errorf("%w: quantity and reorder level must not be negative", httpx.ErrValidation)
	}
	return s.repo.UpdateStock(ctx, id, quantity, reorderLevel)
}
