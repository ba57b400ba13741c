package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned when a product id does not reference an
// active product.
var ErrProductNotFound = errors.New("product not found")

// Repository defines stock data access. Reserve and Release are the only
// mutations; both must be atomic with respect to concurrent callers on the
// same product.
type Repository interface {
	// GetByID retrieves a product, including removed ones (historical reads).
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Reserve atomically verifies stock >= qty and decrements by qty in one
	// indivisible step. Fails with *InsufficientStockError without touching
	// stock when the precondition does not hold.
	Reserve(ctx context.Context, id uuid.UUID, qty int) error

	// Release atomically increments stock by qty. Succeeds for any existing
	// product, removed or not, so voided sales can always restore stock.
	Release(ctx context.Context, id uuid.UUID, qty int) error

	// AdjustStock applies a signed correction. A negative delta that would
	// drive stock below zero fails with *InsufficientStockError.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error)

	// ListLowStock returns active products with stock <= min_stock.
	ListLowStock(ctx context.Context) ([]*Product, error)
}
