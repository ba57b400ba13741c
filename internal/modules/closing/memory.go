package closing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lmoralesdev/caja-backend/internal/modules/cashbox"
	"github.com/lmoralesdev/caja-backend/internal/modules/sale"
)

// MemoryRepository aggregates over the in-memory sale and cashbox stores and
// keeps closures in its own map. Used by tests and Postgres-less deployments.
type MemoryRepository struct {
	mu       sync.Mutex
	sales    sale.Repository
	cash     cashbox.Repository
	closures map[uuid.UUID]*CashClosure
}

func NewMemoryRepository(sales sale.Repository, cash cashbox.Repository) *MemoryRepository {
	return &MemoryRepository{
		sales:    sales,
		cash:     cash,
		closures: map[uuid.UUID]*CashClosure{},
	}
}

func (m *MemoryRepository) AggregateDay(ctx context.Context, day time.Time) (*DayAggregates, error) {
	daySales, err := m.sales.ListSalesByDate(ctx, day, false)
	if err != nil {
		return nil, err
	}
	agg := &DayAggregates{
		SalesCash:    decimal.Zero,
		SalesDigital: decimal.Zero,
	}
	for _, s := range daySales {
		if s.PaymentMethod == sale.PaymentCash {
			agg.SalesCash = agg.SalesCash.Add(s.Total)
		} else {
			agg.SalesDigital = agg.SalesDigital.Add(s.Total)
		}
	}
	if agg.ManualIncomes, err = m.cash.SumByType(ctx, day, cashbox.MovementIncome); err != nil {
		return nil, err
	}
	if agg.ManualExpenses, err = m.cash.SumByType(ctx, day, cashbox.MovementExpense); err != nil {
		return nil, err
	}
	return agg, nil
}

func (m *MemoryRepository) InsertClosure(ctx context.Context, c *CashClosure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.closures[c.ID] = &cp
	return nil
}

func (m *MemoryRepository) ListClosures(ctx context.Context, limit int) ([]*CashClosure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*CashClosure
	for _, c := range m.closures {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClosedAt.After(out[j].ClosedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) GetClosure(ctx context.Context, id uuid.UUID) (*CashClosure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.closures[id]
	if !ok {
		return nil, ErrClosureNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryRepository) MovementsForDay(ctx context.Context, day time.Time) ([]*cashbox.CashMovement, error) {
	return m.cash.ListForDate(ctx, day)
}
