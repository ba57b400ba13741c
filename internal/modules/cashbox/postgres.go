package cashbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Insert(ctx context.Context, m *CashMovement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cash_movements (id, type, amount, description, actor_id, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.Type, m.Amount, m.Description, m.ActorID, m.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert cash_movement: %w", err)
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cash_movements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovementNotFound
	}
	return nil
}

func (r *postgresRepo) ListForDate(ctx context.Context, day time.Time) ([]*CashMovement, error) {
	from, to := dayBounds(day)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount, description, actor_id, occurred_at
		FROM cash_movements
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movements []*CashMovement
	for rows.Next() {
		m := &CashMovement{}
		if err := rows.Scan(&m.ID, &m.Type, &m.Amount, &m.Description,
			&m.ActorID, &m.OccurredAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *postgresRepo) SumByType(ctx context.Context, day time.Time, t MovementType) (decimal.Decimal, error) {
	from, to := dayBounds(day)
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_movements
		WHERE type = $1 AND occurred_at >= $2 AND occurred_at < $3`,
		t, from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	from := day.UTC().Truncate(24 * time.Hour)
	return from, from.Add(24 * time.Hour)
}
