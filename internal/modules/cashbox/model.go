package cashbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a manual cash movement.
type MovementType string

const (
	MovementIncome  MovementType = "INCOME"
	MovementExpense MovementType = "EXPENSE"
)

// CashMovement is a manual, non-sale cash inflow or outflow (owner
// withdrawal, incidental expense, capital injection). Immutable once
// recorded; it can only be deleted outright.
type CashMovement struct {
	ID          uuid.UUID       `json:"id"`
	Type        MovementType    `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ActorID     uuid.UUID       `json:"actor_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// RecordMovementRequest is the payload for appending a cash movement.
type RecordMovementRequest struct {
	ActorID     string          `json:"actor_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}
