package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestProduct(stock, minStock int) *Product {
	return &Product{
		ID:            uuid.New(),
		Barcode:       "750100000001",
		Description:   "Refresco 600ml",
		PurchasePrice: decimal.NewFromFloat(8.50),
		SalePrice:     decimal.NewFromFloat(14.00),
		Stock:         stock,
		MinStock:      minStock,
		Status:        ProductActive,
	}
}

func TestReserveDecrementsStock(t *testing.T) {
	repo := NewMemoryRepository()
	p := newTestProduct(10, 2)
	repo.Put(p)

	if err := repo.Reserve(context.Background(), p.ID, 3); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), p.ID)
	if got.Stock != 7 {
		t.Fatalf("stock = %d, want 7", got.Stock)
	}
}

func TestReserveInsufficientStockLeavesStockUntouched(t *testing.T) {
	repo := NewMemoryRepository()
	p := newTestProduct(10, 2)
	repo.Put(p)

	err := repo.Reserve(context.Background(), p.ID, 12)
	var short *InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if short.Available != 10 || short.Requested != 12 {
		t.Fatalf("short = %+v, want available 10 requested 12", short)
	}
	got, _ := repo.GetByID(context.Background(), p.ID)
	if got.Stock != 10 {
		t.Fatalf("stock = %d, want 10", got.Stock)
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	repo := NewMemoryRepository()
	err := repo.Reserve(context.Background(), uuid.New(), 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestReleaseIncrementsStock(t *testing.T) {
	repo := NewMemoryRepository()
	p := newTestProduct(5, 2)
	repo.Put(p)

	if err := repo.Release(context.Background(), p.ID, 2); err != nil {
		t.Fatalf("Release: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), p.ID)
	if got.Stock != 7 {
		t.Fatalf("stock = %d, want 7", got.Stock)
	}
}

func TestReserveRaceForLastUnit(t *testing.T) {
	repo := NewMemoryRepository()
	p := newTestProduct(1, 0)
	repo.Put(p)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Reserve(context.Background(), p.ID, 1)
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		var ise *InsufficientStockError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &ise):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || short != 1 {
		t.Fatalf("winners = %d, losers = %d; want exactly one of each", ok, short)
	}
	got, _ := repo.GetByID(context.Background(), p.ID)
	if got.Stock != 0 {
		t.Fatalf("final stock = %d, want 0", got.Stock)
	}
}

func TestIsLow(t *testing.T) {
	p := newTestProduct(3, 5)
	if !p.IsLow() {
		t.Fatal("stock 3 with min 5 should be low")
	}
	p.Stock = 5
	if !p.IsLow() {
		t.Fatal("stock equal to min should be low")
	}
	p.Stock = 6
	if p.IsLow() {
		t.Fatal("stock above min should not be low")
	}
}

func TestListLowStock(t *testing.T) {
	repo := NewMemoryRepository()
	low := newTestProduct(1, 5)
	fine := newTestProduct(50, 5)
	removed := newTestProduct(0, 5)
	removed.Status = ProductDeleted
	repo.Put(low)
	repo.Put(fine)
	repo.Put(removed)

	got, err := repo.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if len(got) != 1 || got[0].ID != low.ID {
		t.Fatalf("low-stock list = %v, want only %s", got, low.ID)
	}
}

func TestAdjustStockValidation(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	p := newTestProduct(10, 2)
	repo.Put(p)
	actor := uuid.NewString()

	if _, err := svc.AdjustStock(context.Background(), p.ID.String(), AdjustStockRequest{Delta: 5}); err == nil {
		t.Fatal("missing actor_id should fail")
	}
	if _, err := svc.AdjustStock(context.Background(), p.ID.String(), AdjustStockRequest{ActorID: actor, Delta: 0}); err == nil {
		t.Fatal("zero delta should fail")
	}

	got, err := svc.AdjustStock(context.Background(), p.ID.String(), AdjustStockRequest{ActorID: actor, Delta: -4})
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if got.Stock != 6 {
		t.Fatalf("stock = %d, want 6", got.Stock)
	}

	_, err = svc.AdjustStock(context.Background(), p.ID.String(), AdjustStockRequest{ActorID: actor, Delta: -100})
	var short *InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
}
