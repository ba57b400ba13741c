package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service defines stock business logic: lookups, manual corrections, and the
// low-stock report. Sale-driven reservations go through the sale module's
// transaction instead.
type Service interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	AdjustStock(ctx context.Context, productID string, req AdjustStockRequest) (*Product, error)
	ListLowStock(ctx context.Context) ([]*Product, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	return s.repo.GetByID(ctx, pid)
}

func (s *service) AdjustStock(ctx context.Context, productID string, req AdjustStockRequest) (*Product, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	if req.ActorID == "" {
		return nil, fmt.Errorf("actor_id is required")
	}
	if _, err := uuid.Parse(req.ActorID); err != nil {
		return nil, fmt.Errorf("invalid actor_id: %w", err)
	}
	if req.Delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}
	return s.repo.AdjustStock(ctx, pid, req.Delta)
}

func (s *service) ListLowStock(ctx context.Context) ([]*Product, error) {
	return s.repo.ListLowStock(ctx)
}
