package sale

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lmoralesdev/caja-backend/internal/modules/inventory"
)

type fixture struct {
	inv  *inventory.MemoryRepository
	repo *MemoryRepository
	svc  Service
}

func newFixture() *fixture {
	inv := inventory.NewMemoryRepository()
	repo := NewMemoryRepository(inv)
	return &fixture{inv: inv, repo: repo, svc: NewService(repo, inv)}
}

func (f *fixture) addProduct(stock int, purchase, sale float64) *inventory.Product {
	p := &inventory.Product{
		ID:            uuid.New(),
		Barcode:       "750100000002",
		Description:   "Jabon de tocador",
		PurchasePrice: decimal.NewFromFloat(purchase),
		SalePrice:     decimal.NewFromFloat(sale),
		Stock:         stock,
		MinStock:      1,
		Status:        inventory.ProductActive,
	}
	f.inv.Put(p)
	return p
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.inv.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return p.Stock
}

var actor = uuid.NewString()

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func timeNowUTC() time.Time { return time.Now().UTC() }

func TestCreateSaleTotalsAndStock(t *testing.T) {
	f := newFixture()
	p := f.addProduct(10, 3.20, 5.00)

	received := dec(15.00)
	s, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
		ActorID:        actor,
		Items:          []CartItem{{ProductID: p.ID.String(), Quantity: 3, UnitPrice: dec(5.00)}},
		PaymentMethod:  "cash",
		AmountReceived: &received,
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	if !s.Total.Equal(dec(15.00)) {
		t.Fatalf("total = %s, want 15.00", s.Total)
	}
	if !s.ChangeAmount.Equal(decimal.Zero) {
		t.Fatalf("change = %s, want 0", s.ChangeAmount)
	}
	if f.stockOf(t, p.ID) != 7 {
		t.Fatalf("stock = %d, want 7", f.stockOf(t, p.ID))
	}
	if s.PaymentMethod != PaymentCash {
		t.Fatalf("payment method = %s, want CASH", s.PaymentMethod)
	}

	// sum(line_total) == subtotal, total == subtotal + tax
	sum := decimal.Zero
	for _, line := range s.Lines {
		if !line.LineTotal.Equal(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))) {
			t.Fatalf("line_total %s != qty*unit_price", line.LineTotal)
		}
		sum = sum.Add(line.LineTotal)
	}
	if !sum.Equal(s.Subtotal) {
		t.Fatalf("sum(lines) = %s, subtotal = %s", sum, s.Subtotal)
	}
	if !s.Total.Equal(s.Subtotal.Add(s.TaxAmount)) {
		t.Fatal("total != subtotal + tax")
	}
}

func TestCreateSaleInsufficientStockIsAllOrNothing(t *testing.T) {
	f := newFixture()
	p := f.addProduct(10, 3.20, 5.00)

	_, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
		ActorID:       actor,
		Items:         []CartItem{{ProductID: p.ID.String(), Quantity: 12, UnitPrice: dec(5.00)}},
		PaymentMethod: "CASH",
	})
	var short *inventory.InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if short.Available != 10 || short.Requested != 12 {
		t.Fatalf("short = %+v, want available 10 requested 12", short)
	}
	if f.stockOf(t, p.ID) != 10 {
		t.Fatalf("stock = %d, want 10 (unchanged)", f.stockOf(t, p.ID))
	}
	sales, _ := f.repo.ListSalesByDate(context.Background(), timeNowUTC(), true)
	if len(sales) != 0 {
		t.Fatalf("sales persisted = %d, want 0", len(sales))
	}
}

func TestCreateSaleRollsBackEarlierReservations(t *testing.T) {
	f := newFixture()
	ok := f.addProduct(10, 1.00, 2.00)
	short := f.addProduct(1, 1.00, 2.00)

	_, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
		ActorID: actor,
		Items: []CartItem{
			{ProductID: ok.ID.String(), Quantity: 5, UnitPrice: dec(2.00)},
			{ProductID: short.ID.String(), Quantity: 3, UnitPrice: dec(2.00)},
		},
		PaymentMethod: "CARD",
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if f.stockOf(t, ok.ID) != 10 {
		t.Fatalf("first product stock = %d, want 10 (rolled back)", f.stockOf(t, ok.ID))
	}
	if f.stockOf(t, short.ID) != 1 {
		t.Fatalf("second product stock = %d, want 1", f.stockOf(t, short.ID))
	}
}

func TestCreateSaleValidation(t *testing.T) {
	f := newFixture()
	p := f.addProduct(10, 1.00, 2.00)
	item := CartItem{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec(2.00)}

	cases := []struct {
		name string
		req  CreateSaleRequest
	}{
		{"missing actor", CreateSaleRequest{Items: []CartItem{item}, PaymentMethod: "CASH"}},
		{"empty cart", CreateSaleRequest{ActorID: actor, PaymentMethod: "CASH"}},
		{"bad payment method", CreateSaleRequest{ActorID: actor, Items: []CartItem{item}, PaymentMethod: "CHEQUE"}},
		{"zero quantity", CreateSaleRequest{ActorID: actor, PaymentMethod: "CASH",
			Items: []CartItem{{ProductID: p.ID.String(), Quantity: 0, UnitPrice: dec(2.00)}}}},
		{"negative price", CreateSaleRequest{ActorID: actor, PaymentMethod: "CASH",
			Items: []CartItem{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec(-2.00)}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.CreateSale(context.Background(), tc.req); err == nil {
				t.Fatal("expected validation error")
			}
			if f.stockOf(t, p.ID) != 10 {
				t.Fatalf("stock mutated by invalid request")
			}
		})
	}
}

func TestCreateSaleChangeAndDefaults(t *testing.T) {
	f := newFixture()
	p := f.addProduct(10, 1.00, 2.00)

	received := dec(20.00)
	s, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
		ActorID:        actor,
		Items:          []CartItem{{ProductID: p.ID.String(), Quantity: 3, UnitPrice: dec(5.00)}},
		PaymentMethod:  "cash",
		AmountReceived: &received,
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if !s.ChangeAmount.Equal(dec(5.00)) {
		t.Fatalf("change = %s, want 5.00", s.ChangeAmount)
	}

	// Absent amount_received defaults to the total, change zero.
	s2, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
		ActorID:       actor,
		Items:         []CartItem{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec(5.00)}},
		PaymentMethod: "TRANSFER",
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if !s2.AmountPaid.Equal(s2.Total) || !s2.ChangeAmount.Equal(decimal.Zero) {
		t.Fatalf("paid = %s change = %s, want paid == total and change 0", s2.AmountPaid, s2.ChangeAmount)
	}
}

func TestCreateSaleSnapshotsProductData(t *testing.T) {
	f := newFixture()
	p := f.addProduct(10, 3.20, 5.00)

	s, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
		ActorID:       actor,
		Items:         []CartItem{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec(5.00)}},
		PaymentMethod: "CASH",
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	line := s.Lines[0]
	if !line.UnitCost.Equal(dec(3.20)) || line.Description != p.Description || line.Barcode != p.Barcode {
		t.Fatalf("line did not snapshot product data: %+v", line)
	}

	// A later catalog edit must not reach back into the stored line.
	edited := *p
	edited.Description = "Jabon liquido"
	edited.PurchasePrice = dec(9.99)
	edited.Stock = 9
	f.inv.Put(&edited)

	stored, err := f.svc.GetSale(context.Background(), s.ID.String())
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if stored.Lines[0].Description != "Jabon de tocador" || !stored.Lines[0].UnitCost.Equal(dec(3.20)) {
		t.Fatalf("stored line changed after catalog edit: %+v", stored.Lines[0])
	}
}

func TestCreateSaleClientFindOrCreate(t *testing.T) {
	f := newFixture()
	p := f.addProduct(10, 1.00, 2.00)
	mk := func() *Sale {
		s, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
			ActorID:       actor,
			Items:         []CartItem{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec(2.00)}},
			PaymentMethod: "CASH",
			Client:        &ClientRef{Name: "Maria Lopez", Phone: "555-0101"},
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
		return s
	}

	first := mk()
	second := mk()
	if first.ClientID == nil || second.ClientID == nil {
		t.Fatal("client not attached")
	}
	if *first.ClientID != *second.ClientID {
		t.Fatal("same name should resolve to the same client")
	}

	// Unknown explicit id is rejected.
	_, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
		ActorID:       actor,
		Items:         []CartItem{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec(2.00)}},
		PaymentMethod: "CASH",
		Client:        &ClientRef{ID: uuid.NewString()},
	})
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("err = %v, want ErrClientNotFound", err)
	}
}

func TestVoidSaleRestoresStockOnce(t *testing.T) {
	f := newFixture()
	p := f.addProduct(5, 1.00, 2.00)

	s, err := f.svc.CreateSale(context.Background(), CreateSaleRequest{
		ActorID:       actor,
		Items:         []CartItem{{ProductID: p.ID.String(), Quantity: 2, UnitPrice: dec(2.00)}},
		PaymentMethod: "CASH",
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if f.stockOf(t, p.ID) != 3 {
		t.Fatalf("stock = %d, want 3", f.stockOf(t, p.ID))
	}

	voided, err := f.svc.VoidSale(context.Background(), s.ID.String(), VoidSaleRequest{ActorID: actor})
	if err != nil {
		t.Fatalf("VoidSale: %v", err)
	}
	if voided.Status != SaleVoided {
		t.Fatalf("status = %s, want VOIDED", voided.Status)
	}
	if f.stockOf(t, p.ID) != 5 {
		t.Fatalf("stock = %d, want 5 (restored)", f.stockOf(t, p.ID))
	}

	_, err = f.svc.VoidSale(context.Background(), s.ID.String(), VoidSaleRequest{ActorID: actor})
	if !errors.Is(err, ErrAlreadyVoided) {
		t.Fatalf("err = %v, want ErrAlreadyVoided", err)
	}
	if f.stockOf(t, p.ID) != 5 {
		t.Fatalf("stock = %d after double void, want 5", f.stockOf(t, p.ID))
	}

	// Voided sales drop out of the default day listing.
	sales, _ := f.svc.ListSalesByDate(context.Background(), timeNowUTC(), false)
	if len(sales) != 0 {
		t.Fatalf("active sales = %d, want 0", len(sales))
	}
	all, _ := f.svc.ListSalesByDate(context.Background(), timeNowUTC(), true)
	if len(all) != 1 {
		t.Fatalf("all sales = %d, want 1", len(all))
	}
}

func TestVoidSaleNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.VoidSale(context.Background(), uuid.NewString(), VoidSaleRequest{ActorID: actor})
	if !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("err = %v, want ErrSaleNotFound", err)
	}
}

func TestConcurrentSalesForLastUnit(t *testing.T) {
	f := newFixture()
	p := f.addProduct(1, 1.00, 2.00)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateSale(context.Background(), CreateSaleRequest{
				ActorID:       actor,
				Items:         []CartItem{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec(2.00)}},
				PaymentMethod: "CASH",
			})
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		var ise *inventory.InsufficientStockError
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
	if f.stockOf(t, p.ID) != 0 {
		t.Fatalf("final stock = %d, want 0", f.stockOf(t, p.ID))
	}
}
