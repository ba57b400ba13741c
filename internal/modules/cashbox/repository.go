package cashbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrMovementNotFound is returned when a movement id matches nothing.
var ErrMovementNotFound = errors.New("cash movement not found")

// Repository defines data access for the cash ledger.
type Repository interface {
	// Insert appends a movement to the ledger.
	Insert(ctx context.Context, m *CashMovement) error

	// Delete removes a movement entry. Sales and stock are unaffected.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForDate returns the movements of one calendar day, oldest first.
	ListForDate(ctx context.Context, day time.Time) ([]*CashMovement, error)

	// SumByType totals one movement type over a calendar day. An empty day
	// sums to zero.
	SumByType(ctx context.Context, day time.Time, t MovementType) (decimal.Decimal, error)
}
