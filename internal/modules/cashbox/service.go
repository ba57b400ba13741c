package cashbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the cash ledger business logic.
type Service interface {
	// Record validates and appends a movement to the ledger.
	Record(ctx context.Context, req RecordMovementRequest) (*CashMovement, error)

	// Delete removes a movement. It has no effect on stock or sales.
	Delete(ctx context.Context, id string) error

	// ListForDate returns the movements of one calendar day, oldest first.
	ListForDate(ctx context.Context, day time.Time) ([]*CashMovement, error)

	// SumByType totals one movement type over a calendar day.
	SumByType(ctx context.Context, day time.Time, t MovementType) (decimal.Decimal, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Record(ctx context.Context, req RecordMovementRequest) (*CashMovement, error) {
	if req.ActorID == "" {
		return nil, fmt.Errorf("actor_id is required")
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor_id: %w", err)
	}

	t := MovementType(strings.ToUpper(req.Type))
	switch t {
	case MovementIncome, MovementExpense:
	default:
		return nil, fmt.Errorf("invalid type: %q (allowed: INCOME, EXPENSE)", req.Type)
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}

	m := &CashMovement{
		ID:          uuid.New(),
		Type:        t,
		Amount:      req.Amount,
		Description: description,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	mid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid movement id: %w", err)
	}
	return s.repo.Delete(ctx, mid)
}

func (s *service) ListForDate(ctx context.Context, day time.Time) ([]*CashMovement, error) {
	return s.repo.ListForDate(ctx, day)
}

func (s *service) SumByType(ctx context.Context, day time.Time, t MovementType) (decimal.Decimal, error) {
	return s.repo.SumByType(ctx, day, t)
}
