package sale

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSaleNotFound is returned when a sale id or number matches nothing.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrAlreadyVoided is returned on a repeated void attempt, so stock is
	// never credited twice for the same sale.
	ErrAlreadyVoided = errors.New("sale already voided")

	// ErrClientNotFound is returned when a supplied client id does not exist.
	ErrClientNotFound = errors.New("client not found")
)

// Repository defines data access for sales.
type Repository interface {
	// CreateSale persists the sale and its lines and reserves stock for every
	// line, all inside one transaction. If any reservation fails the whole
	// operation rolls back: no sale row and no stock change survives.
	CreateSale(ctx context.Context, s *Sale) error

	// VoidSale releases every line's stock and marks the sale voided, as one
	// atomic unit. Returns ErrAlreadyVoided without touching stock when the
	// sale is already voided.
	VoidSale(ctx context.Context, id uuid.UUID) (*Sale, error)

	// GetSaleByID retrieves a sale with its lines.
	GetSaleByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// GetSaleByNumber retrieves a sale by its human-readable number.
	GetSaleByNumber(ctx context.Context, number string) (*Sale, error)

	// ListSalesByDate returns sales whose sold_at falls on the given calendar
	// day, newest first. Voided sales are excluded unless includeVoided.
	ListSalesByDate(ctx context.Context, day time.Time, includeVoided bool) ([]*Sale, error)

	// GetClient retrieves a client by id.
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindOrCreateClient returns the client with the given name, creating it
	// if absent.
	FindOrCreateClient(ctx context.Context, name, phone string) (*Client, error)
}
