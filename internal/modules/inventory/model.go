package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus marks a product as live or removed from the catalog.
// Removed products are kept so historical sales keep pointing at them.
type ProductStatus string

const (
	ProductActive  ProductStatus = "ACTIVE"
	ProductDeleted ProductStatus = "DELETED"
)

// Product is a catalog item whose stock this module owns. Catalog CRUD
// (descriptions, prices) belongs to the surrounding application; only the
// stock counter is mutated here.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Barcode       string          `json:"barcode,omitempty"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	Status        ProductStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsLow reports whether the product is at or below its reorder threshold.
func (p *Product) IsLow() bool { return p.Stock <= p.MinStock }

// AdjustStockRequest is the payload for a manual stock correction
// (goods received, shrinkage, recount). Delta may be negative.
type AdjustStockRequest struct {
	ActorID string `json:"actor_id"`
	Delta   int    `json:"delta"`
	Reason  string `json:"reason,omitempty"`
}

// InsufficientStockError reports a reservation that would drive stock negative.
type InsufficientStockError struct {
	ProductID uuid.UUID `json:"product_id"`
	Available int       `json:"available"`
	Requested int       `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}
