package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory Repository. It backs the
// test suite and single-terminal deployments without Postgres.
type MemoryRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*Product
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{products: map[uuid.UUID]*Product{}}
}

// Put inserts or replaces a product. Used by tests and by the surrounding
// catalog layer when running on the in-memory backend.
func (m *MemoryRepository) Put(p *Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
}

func (m *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) Reserve(ctx context.Context, id uuid.UUID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserveLocked(id, qty)
}

func (m *MemoryRepository) reserveLocked(id uuid.UUID, qty int) error {
	p, ok := m.products[id]
	if !ok || p.Status != ProductActive {
		return ErrProductNotFound
	}
	if p.Stock < qty {
		return &InsufficientStockError{ProductID: id, Available: p.Stock, Requested: qty}
	}
	p.Stock -= qty
	return nil
}

func (m *MemoryRepository) Release(ctx context.Context, id uuid.UUID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked(id, qty)
}

func (m *MemoryRepository) releaseLocked(id uuid.UUID, qty int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += qty
	return nil
}

func (m *MemoryRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	if delta >= 0 {
		err = m.releaseLocked(id, delta)
	} else {
		err = m.reserveLocked(id, -delta)
	}
	if err != nil {
		return nil, err
	}
	cp := *m.products[id]
	return &cp, nil
}

func (m *MemoryRepository) ListLowStock(ctx context.Context) ([]*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var low []*Product
	for _, p := range m.products {
		if p.Status == ProductActive && p.IsLow() {
			cp := *p
			low = append(low, &cp)
		}
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].Stock != low[j].Stock {
			return low[i].Stock < low[j].Stock
		}
		return low[i].Description < low[j].Description
	})
	return low, nil
}
