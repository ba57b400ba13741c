package closing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lmoralesdev/caja-backend/internal/modules/cashbox"
)

// DailySummary is the live, re-computable view of one day's money flow. It
// is never persisted; the frozen counterpart is CashClosure.
type DailySummary struct {
	Date           time.Time       `json:"date"`
	SalesCash      decimal.Decimal `json:"sales_cash"`
	SalesDigital   decimal.Decimal `json:"sales_digital"`
	ManualIncomes  decimal.Decimal `json:"manual_incomes"`
	ManualExpenses decimal.Decimal `json:"manual_expenses"`
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	TotalSalesDay  decimal.Decimal `json:"total_sales_day"`
}

// CashClosure is the immutable end-of-day snapshot: the summary figures as
// they stood at closing time, the physically counted cash, and the
// resulting surplus or shortfall. Later edits to the day's sales or
// movements never reach back into a recorded closure.
type CashClosure struct {
	ID             uuid.UUID       `json:"id"`
	ActorID        uuid.UUID       `json:"actor_id"`
	ClosedAt       time.Time       `json:"closed_at"`
	SalesCash      decimal.Decimal `json:"sales_cash"`
	SalesDigital   decimal.Decimal `json:"sales_digital"`
	ManualIncomes  decimal.Decimal `json:"manual_incomes"`
	ManualExpenses decimal.Decimal `json:"manual_expenses"`
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	CountedCash    decimal.Decimal `json:"counted_cash"`
	Difference     decimal.Decimal `json:"difference"`
	Notes          string          `json:"notes,omitempty"`
}

// DayAggregates holds the raw partitioned totals for one calendar day, read
// in a single consistent snapshot.
type DayAggregates struct {
	SalesCash      decimal.Decimal
	SalesDigital   decimal.Decimal
	ManualIncomes  decimal.Decimal
	ManualExpenses decimal.Decimal
}

// CreateClosureRequest is the payload for recording a closure.
type CreateClosureRequest struct {
	ActorID     string          `json:"actor_id"`
	CountedCash decimal.Decimal `json:"counted_cash"`
	Notes       string          `json:"notes,omitempty"`
}

// ClosureDetail pairs a stored closure with the cash movements of its
// calendar day, for audit display.
type ClosureDetail struct {
	Closure   *CashClosure            `json:"closure"`
	Movements []*cashbox.CashMovement `json:"movements"`
}
