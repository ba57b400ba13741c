package sale

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lmoralesdev/caja-backend/internal/modules/inventory"
)

// MemoryRepository is an in-memory Repository layered over the inventory
// memory store. It mirrors the transactional guarantees of the Postgres
// implementation: a failed reservation rolls back every reservation already
// made in the same call.
type MemoryRepository struct {
	mu       sync.Mutex
	inv      *inventory.MemoryRepository
	sales    map[uuid.UUID]*Sale
	byNumber map[string]uuid.UUID
	clients  map[uuid.UUID]*Client
}

func NewMemoryRepository(inv *inventory.MemoryRepository) *MemoryRepository {
	return &MemoryRepository{
		inv:      inv,
		sales:    map[uuid.UUID]*Sale{},
		byNumber: map[string]uuid.UUID{},
		clients:  map[uuid.UUID]*Client{},
	}
}

func (m *MemoryRepository) CreateSale(ctx context.Context, s *Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var reserved []*SaleLine
	for _, line := range s.Lines {
		if err := m.inv.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			for _, done := range reserved {
				_ = m.inv.Release(ctx, done.ProductID, done.Quantity)
			}
			return err
		}
		reserved = append(reserved, line)
	}

	cp := cloneSale(s)
	m.sales[s.ID] = cp
	m.byNumber[s.SaleNumber] = s.ID
	return nil
}

func (m *MemoryRepository) VoidSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sales[id]
	if !ok {
		return nil, ErrSaleNotFound
	}
	if s.Status == SaleVoided {
		return nil, ErrAlreadyVoided
	}
	for _, line := range s.Lines {
		if err := m.inv.Release(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}
	s.Status = SaleVoided
	s.UpdatedAt = time.Now().UTC()
	return cloneSale(s), nil
}

func (m *MemoryRepository) GetSaleByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[id]
	if !ok {
		return nil, ErrSaleNotFound
	}
	return cloneSale(s), nil
}

func (m *MemoryRepository) GetSaleByNumber(ctx context.Context, number string) (*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byNumber[number]
	if !ok {
		return nil, ErrSaleNotFound
	}
	return cloneSale(m.sales[id]), nil
}

func (m *MemoryRepository) ListSalesByDate(ctx context.Context, day time.Time, includeVoided bool) ([]*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	y, mo, d := day.UTC().Date()
	var out []*Sale
	for _, s := range m.sales {
		sy, smo, sd := s.SoldAt.UTC().Date()
		if sy != y || smo != mo || sd != d {
			continue
		}
		if !includeVoided && s.Status != SaleCompleted {
			continue
		}
		out = append(out, cloneSale(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	return out, nil
}

func (m *MemoryRepository) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryRepository) FindOrCreateClient(ctx context.Context, name, phone string) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	c := &Client{ID: uuid.New(), Name: name, Phone: phone, CreatedAt: time.Now().UTC()}
	m.clients[c.ID] = c
	cp := *c
	return &cp, nil
}

func cloneSale(s *Sale) *Sale {
	cp := *s
	if s.ClientID != nil {
		cid := *s.ClientID
		cp.ClientID = &cid
	}
	cp.Lines = make([]*SaleLine, len(s.Lines))
	for i, line := range s.Lines {
		l := *line
		cp.Lines[i] = &l
	}
	return &cp
}
