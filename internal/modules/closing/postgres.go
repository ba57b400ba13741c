package closing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lmoralesdev/caja-backend/internal/modules/cashbox"
	"github.com/lmoralesdev/caja-backend/internal/modules/sale"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// AggregateDay runs the sale and movement aggregates inside one repeatable
// read, read-only transaction so the summary never mixes data from two
// points in time.
func (r *postgresRepo) AggregateDay(ctx context.Context, day time.Time) (*DayAggregates, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	agg := &DayAggregates{}
	err = tx.QueryRowContext(ctx, `
		SELECT
		  COALESCE(SUM(total) FILTER (WHERE payment_method = $3), 0),
		  COALESCE(SUM(total) FILTER (WHERE payment_method IN ($4, $5)), 0)
		FROM sales
		WHERE sold_at >= $1 AND sold_at < $2 AND status = $6`,
		from, to, sale.PaymentCash, sale.PaymentCard, sale.PaymentTransfer,
		sale.SaleCompleted).
		Scan(&agg.SalesCash, &agg.SalesDigital)
	if err != nil {
		return nil, serializationErr(err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT
		  COALESCE(SUM(amount) FILTER (WHERE type = $3), 0),
		  COALESCE(SUM(amount) FILTER (WHERE type = $4), 0)
		FROM cash_movements
		WHERE occurred_at >= $1 AND occurred_at < $2`,
		from, to, cashbox.MovementIncome, cashbox.MovementExpense).
		Scan(&agg.ManualIncomes, &agg.ManualExpenses)
	if err != nil {
		return nil, serializationErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, serializationErr(err)
	}
	return agg, nil
}

func (r *postgresRepo) InsertClosure(ctx context.Context, c *CashClosure) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cash_closures
		  (id, actor_id, closed_at, sales_cash, sales_digital, manual_incomes,
		   manual_expenses, expected_cash, counted_cash, difference, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.ActorID, c.ClosedAt, c.SalesCash, c.SalesDigital, c.ManualIncomes,
		c.ManualExpenses, c.ExpectedCash, c.CountedCash, c.Difference, nullableNotes(c.Notes))
	if err != nil {
		return fmt.Errorf("insert cash_closure: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListClosures(ctx context.Context, limit int) ([]*CashClosure, error) {
	rows, err := r.db.QueryContext(ctx, closureColumns+`
		ORDER BY closed_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var closures []*CashClosure
	for rows.Next() {
		c, err := scanClosure(rows)
		if err != nil {
			return nil, err
		}
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

func (r *postgresRepo) GetClosure(ctx context.Context, id uuid.UUID) (*CashClosure, error) {
	row := r.db.QueryRowContext(ctx, closureColumns+` WHERE id = $1`, id)
	c := &CashClosure{}
	var notes sql.NullString
	err := row.Scan(&c.ID, &c.ActorID, &c.ClosedAt, &c.SalesCash, &c.SalesDigital,
		&c.ManualIncomes, &c.ManualExpenses, &c.ExpectedCash, &c.CountedCash,
		&c.Difference, &notes)
	if err == sql.ErrNoRows {
		return nil, ErrClosureNotFound
	}
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	return c, nil
}

func (r *postgresRepo) MovementsForDay(ctx context.Context, day time.Time) ([]*cashbox.CashMovement, error) {
	return cashbox.NewPostgresRepository(r.db).ListForDate(ctx, day)
}

// ── helpers ───────────────────────────────────────────────────────────────────

const closureColumns = `
	SELECT id, actor_id, closed_at, sales_cash, sales_digital, manual_incomes,
	       manual_expenses, expected_cash, counted_cash, difference, notes
	FROM cash_closures`

func scanClosure(rows *sql.Rows) (*CashClosure, error) {
	c := &CashClosure{}
	var notes sql.NullString
	if err := rows.Scan(&c.ID, &c.ActorID, &c.ClosedAt, &c.SalesCash, &c.SalesDigital,
		&c.ManualIncomes, &c.ManualExpenses, &c.ExpectedCash, &c.CountedCash,
		&c.Difference, &notes); err != nil {
		return nil, err
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	return c, nil
}

// serializationErr maps Postgres serialization failures (class 40001) to the
// retryable conflict error.
func serializationErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "40001" {
		return ErrConcurrencyConflict
	}
	return err
}

func nullableNotes(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
