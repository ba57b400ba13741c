package cashbox

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryRepository is a mutex-guarded in-memory ledger used by tests and
// Postgres-less deployments.
type MemoryRepository struct {
	mu        sync.Mutex
	movements map[uuid.UUID]*CashMovement
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{movements: map[uuid.UUID]*CashMovement{}}
}

func (m *MemoryRepository) Insert(ctx context.Context, mv *CashMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mv
	m.movements[mv.ID] = &cp
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.movements[id]; !ok {
		return ErrMovementNotFound
	}
	delete(m.movements, id)
	return nil
}

func (m *MemoryRepository) ListForDate(ctx context.Context, day time.Time) ([]*CashMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*CashMovement
	for _, mv := range m.movements {
		if sameDay(mv.OccurredAt, day) {
			cp := *mv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (m *MemoryRepository) SumByType(ctx context.Context, day time.Time, t MovementType) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, mv := range m.movements {
		if mv.Type == t && sameDay(mv.OccurredAt, day) {
			sum = sum.Add(mv.Amount)
		}
	}
	return sum, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
