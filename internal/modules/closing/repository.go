package closing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lmoralesdev/caja-backend/internal/modules/cashbox"
)

var (
	// ErrClosureNotFound is returned when a closure id matches nothing.
	ErrClosureNotFound = errors.New("closure not found")

	// ErrConcurrencyConflict is returned when the aggregation snapshot loses
	// a serialization race with a concurrent writer; the caller may retry.
	ErrConcurrencyConflict = errors.New("concurrent update conflict, retry")
)

// Repository defines data access for reconciliation.
type Repository interface {
	// AggregateDay reads one day's non-voided sale totals partitioned by
	// payment method and the manual movement totals partitioned by type,
	// all within one consistent snapshot.
	AggregateDay(ctx context.Context, day time.Time) (*DayAggregates, error)

	// InsertClosure persists a closure snapshot. Closures are never updated.
	InsertClosure(ctx context.Context, c *CashClosure) error

	// ListClosures returns closures most-recent-first, up to limit.
	ListClosures(ctx context.Context, limit int) ([]*CashClosure, error)

	// GetClosure retrieves a closure by id.
	GetClosure(ctx context.Context, id uuid.UUID) (*CashClosure, error)

	// MovementsForDay returns the cash movements of one calendar day.
	MovementsForDay(ctx context.Context, day time.Time) ([]*cashbox.CashMovement, error)
}
