package sale

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lmoralesdev/caja-backend/internal/modules/inventory"
)

// Service defines the sale transaction business logic.
type Service interface {
	// CreateSale validates the cart, reserves stock, and persists the sale
	// with its lines as one atomic unit.
	CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error)

	// VoidSale restores stock for every line and marks the sale voided.
	// Voiding an already-voided sale fails with ErrAlreadyVoided.
	VoidSale(ctx context.Context, id string, req VoidSaleRequest) (*Sale, error)

	// GetSale retrieves a full sale with its lines by UUID.
	GetSale(ctx context.Context, id string) (*Sale, error)

	// GetSaleByNumber retrieves a sale by its human-readable number.
	GetSaleByNumber(ctx context.Context, number string) (*Sale, error)

	// ListSalesByDate returns the sales of one calendar day, newest first.
	ListSalesByDate(ctx context.Context, day time.Time, includeVoided bool) ([]*Sale, error)
}

type service struct {
	repo     Repository
	products inventory.Repository
}

// NewService creates a new sale service. Product snapshots are read from the
// inventory repository; stock reservations happen inside the sale repository
// transaction.
func NewService(repo Repository, products inventory.Repository) Service {
	return &service{repo: repo, products: products}
}

func (s *service) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	// All validation happens before any write.
	actorID, err := parseActor(req.ActorID)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("sale must contain at least one item")
	}

	method := PaymentMethod(strings.ToUpper(req.PaymentMethod))
	switch method {
	case PaymentCash, PaymentCard, PaymentTransfer:
	default:
		return nil, fmt.Errorf("invalid payment_method: %q (allowed: CASH, CARD, TRANSFER)", req.PaymentMethod)
	}

	tax := decimal.Zero
	if req.TaxAmount != nil {
		if req.TaxAmount.IsNegative() {
			return nil, fmt.Errorf("tax_amount must not be negative")
		}
		tax = *req.TaxAmount
	}
	if req.AmountReceived != nil && req.AmountReceived.IsNegative() {
		return nil, fmt.Errorf("amount_received must not be negative")
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be > 0 for product %s", item.ProductID)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("unit_price must not be negative for product %s", item.ProductID)
		}
		if _, err := uuid.Parse(item.ProductID); err != nil {
			return nil, fmt.Errorf("invalid product_id %q: %w", item.ProductID, err)
		}
	}

	clientID, err := s.resolveClient(ctx, req.Client)
	if err != nil {
		return nil, err
	}

	// Build lines from the current product snapshot. The unit price is the
	// caller's, not the catalog's; barcode, description, and purchase cost
	// are frozen here so later catalog edits never rewrite history.
	saleID := uuid.New()
	var lines []*SaleLine
	subtotal := decimal.Zero
	for _, item := range req.Items {
		pid := uuid.MustParse(item.ProductID)
		p, err := s.products.GetByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if p.Status != inventory.ProductActive {
			return nil, inventory.ErrProductNotFound
		}
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, &SaleLine{
			ID:          uuid.New(),
			SaleID:      saleID,
			ProductID:   pid,
			Barcode:     p.Barcode,
			Description: p.Description,
			UnitCost:    p.PurchasePrice,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
			CreatedAt:   time.Now().UTC(),
		})
	}

	total := subtotal.Add(tax)
	received := total
	if req.AmountReceived != nil {
		received = *req.AmountReceived
	}
	change := received.Sub(total)
	if change.IsNegative() {
		change = decimal.Zero
	}

	now := time.Now().UTC()
	sl := &Sale{
		ID:            saleID,
		SaleNumber:    generateSaleNumber(),
		ActorID:       actorID,
		ClientID:      clientID,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		Total:         total,
		PaymentMethod: method,
		AmountPaid:    received,
		ChangeAmount:  change,
		Status:        SaleCompleted,
		SoldAt:        now,
		Lines:         lines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateSale(ctx, sl); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *service) VoidSale(ctx context.Context, id string, req VoidSaleRequest) (*Sale, error) {
	if _, err := parseActor(req.ActorID); err != nil {
		return nil, err
	}
	saleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid sale id: %w", err)
	}
	return s.repo.VoidSale(ctx, saleID)
}

func (s *service) GetSale(ctx context.Context, id string) (*Sale, error) {
	saleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid sale id: %w", err)
	}
	return s.repo.GetSaleByID(ctx, saleID)
}

func (s *service) GetSaleByNumber(ctx context.Context, number string) (*Sale, error) {
	return s.repo.GetSaleByNumber(ctx, number)
}

func (s *service) ListSalesByDate(ctx context.Context, day time.Time, includeVoided bool) ([]*Sale, error) {
	return s.repo.ListSalesByDate(ctx, day, includeVoided)
}

// resolveClient turns the client reference into a client id: an existing id
// is verified, a bare name is found-or-created, absence means anonymous.
func (s *service) resolveClient(ctx context.Context, ref *ClientRef) (*uuid.UUID, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.ID != "" {
		cid, err := uuid.Parse(ref.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid client id: %w", err)
		}
		if _, err := s.repo.GetClient(ctx, cid); err != nil {
			return nil, err
		}
		return &cid, nil
	}
	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return nil, nil
	}
	c, err := s.repo.FindOrCreateClient(ctx, name, strings.TrimSpace(ref.Phone))
	if err != nil {
		return nil, err
	}
	return &c.ID, nil
}

func parseActor(actorID string) (uuid.UUID, error) {
	if actorID == "" {
		return uuid.Nil, fmt.Errorf("actor_id is required")
	}
	id, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid actor_id: %w", err)
	}
	return id, nil
}

// generateSaleNumber creates a human-readable sale number: VTA-YYYYMMDD-XXXX
func generateSaleNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("VTA-%s-%s", date, suffix)
}
