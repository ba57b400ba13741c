package closing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
)

// Service defines the reconciliation business logic.
type Service interface {
	// ComputeDailySummary produces the live summary for one calendar day.
	// An empty day yields zero-valued figures, never an error.
	ComputeDailySummary(ctx context.Context, day time.Time) (*DailySummary, error)

	// CreateClosure snapshots today's summary against the counted cash and
	// persists it permanently.
	CreateClosure(ctx context.Context, req CreateClosureRequest) (*CashClosure, error)

	// History returns closures most-recent-first.
	History(ctx context.Context, limit int) ([]*CashClosure, error)

	// ClosureDetail returns a closure plus the cash movements of its day.
	ClosureDetail(ctx context.Context, id string) (*ClosureDetail, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new reconciliation service.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) ComputeDailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	agg, err := s.repo.AggregateDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return &DailySummary{
		Date:           day.UTC().Truncate(24 * time.Hour),
		SalesCash:      agg.SalesCash,
		SalesDigital:   agg.SalesDigital,
		ManualIncomes:  agg.ManualIncomes,
		ManualExpenses: agg.ManualExpenses,
		ExpectedCash:   agg.SalesCash.Add(agg.ManualIncomes).Sub(agg.ManualExpenses),
		TotalSalesDay:  agg.SalesCash.Add(agg.SalesDigital),
	}, nil
}

func (s *service) CreateClosure(ctx context.Context, req CreateClosureRequest) (*CashClosure, error) {
	if req.ActorID == "" {
		return nil, fmt.Errorf("actor_id is required")
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor_id: %w", err)
	}
	if req.CountedCash.IsNegative() {
		return nil, fmt.Errorf("counted_cash must not be negative")
	}

	now := s.now()
	summary, err := s.ComputeDailySummary(ctx, now)
	if err != nil {
		return nil, err
	}

	c := &CashClosure{
		ID:             uuid.New(),
		ActorID:        actorID,
		ClosedAt:       now,
		SalesCash:      summary.SalesCash,
		SalesDigital:   summary.SalesDigital,
		ManualIncomes:  summary.ManualIncomes,
		ManualExpenses: summary.ManualExpenses,
		ExpectedCash:   summary.ExpectedCash,
		CountedCash:    req.CountedCash,
		Difference:     req.CountedCash.Sub(summary.ExpectedCash),
		Notes:          req.Notes,
	}
	if err := s.repo.InsertClosure(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) History(ctx context.Context, limit int) ([]*CashClosure, error) {
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.ListClosures(ctx, limit)
}

func (s *service) ClosureDetail(ctx context.Context, id string) (*ClosureDetail, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid closure id: %w", err)
	}
	c, err := s.repo.GetClosure(ctx, cid)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.MovementsForDay(ctx, c.ClosedAt)
	if err != nil {
		return nil, err
	}
	return &ClosureDetail{Closure: c, Movements: movements}, nil
}
