package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a sale was paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// SaleStatus represents the lifecycle state of a sale. Sales are never
// physically deleted; voiding flips the status and restores stock.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "COMPLETED"
	SaleVoided    SaleStatus = "VOIDED"
)

// Client is a walk-in customer attached to a sale, created on demand when a
// cashier supplies a name without an id.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Sale is a completed transaction of one or more items against inventory.
type Sale struct {
	ID            uuid.UUID       `json:"id"`
	SaleNumber    string          `json:"sale_number"`
	ActorID       uuid.UUID       `json:"actor_id"`
	ClientID      *uuid.UUID      `json:"client_id,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	ChangeAmount  decimal.Decimal `json:"change_amount"`
	Status        SaleStatus      `json:"status"`
	SoldAt        time.Time       `json:"sold_at"`
	Lines         []*SaleLine     `json:"lines,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SaleLine is one product's quantity and price within a sale. Barcode,
// description, and unit cost are frozen at sale time; later catalog edits
// never reach back into recorded lines.
type SaleLine struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Barcode     string          `json:"barcode,omitempty"`
	Description string          `json:"description"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CartItem describes what the cashier is selling. The unit price comes from
// the terminal rather than the live catalog.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ClientRef identifies the customer: an existing id, or a name (plus optional
// phone) to find-or-create, or absent for an anonymous sale.
type ClientRef struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateSaleRequest is the payload for registering a sale.
type CreateSaleRequest struct {
	ActorID        string           `json:"actor_id"`
	Items          []CartItem       `json:"items"`
	PaymentMethod  string           `json:"payment_method"`
	AmountReceived *decimal.Decimal `json:"amount_received,omitempty"` // defaults to the total
	TaxAmount      *decimal.Decimal `json:"tax_amount,omitempty"`      // computed upstream, zero by default
	Client         *ClientRef       `json:"client,omitempty"`
}

// VoidSaleRequest is the payload for voiding a sale.
type VoidSaleRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason,omitempty"`
}
