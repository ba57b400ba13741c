package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// execer covers both *sql.DB and *sql.Tx so the stock primitives can run
// standalone or inside a caller-owned transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ReserveStockTx performs the compare-and-decrement for one product inside
// the given transaction. The check and the write are a single conditional
// UPDATE, so two callers racing for the last unit can never both win.
func ReserveStockTx(ctx context.Context, tx execer, productID uuid.UUID, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = $3
		WHERE id = $1 AND status = 'ACTIVE' AND stock >= $2`,
		productID, qty, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// The guard rejected the update: either the product is gone or the
	// stock is short. Re-read to report which.
	var available int
	err = tx.QueryRowContext(ctx,
		`SELECT stock FROM products WHERE id = $1 AND status = 'ACTIVE'`,
		productID).Scan(&available)
	if err == sql.ErrNoRows {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return &InsufficientStockError{ProductID: productID, Available: available, Requested: qty}
}

// ReleaseStockTx increments stock inside the given transaction. Removed
// products still accept releases so void always restores stock.
func ReleaseStockTx(ctx context.Context, tx execer, productID uuid.UUID, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = $3 WHERE id = $1`,
		productID, qty, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `
		SELECT id, barcode, description, purchase_price, sale_price,
		       stock, min_stock, status, created_at, updated_at
		FROM products WHERE id = $1`, id))
}

func (r *postgresRepo) Reserve(ctx context.Context, id uuid.UUID, qty int) error {
	return ReserveStockTx(ctx, r.db, id, qty)
}

func (r *postgresRepo) Release(ctx context.Context, id uuid.UUID, qty int) error {
	return ReleaseStockTx(ctx, r.db, id, qty)
}

func (r *postgresRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error) {
	if delta >= 0 {
		if err := ReleaseStockTx(ctx, r.db, id, delta); err != nil {
			return nil, err
		}
	} else {
		if err := ReserveStockTx(ctx, r.db, id, -delta); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) ListLowStock(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, barcode, description, purchase_price, sale_price,
		       stock, min_stock, status, created_at, updated_at
		FROM products
		WHERE status = 'ACTIVE' AND stock <= min_stock
		ORDER BY stock ASC, description ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []*Product
	for rows.Next() {
		p, err := scanProductRows(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ── scanners ──────────────────────────────────────────────────────────────────

func scanProduct(row *sql.Row) (*Product, error) {
	p := &Product{}
	var barcode sql.NullString
	err := row.Scan(&p.ID, &barcode, &p.Description, &p.PurchasePrice, &p.SalePrice,
		&p.Stock, &p.MinStock, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if barcode.Valid {
		p.Barcode = barcode.String
	}
	return p, nil
}

func scanProductRows(rows *sql.Rows) (*Product, error) {
	p := &Product{}
	var barcode sql.NullString
	if err := rows.Scan(&p.ID, &barcode, &p.Description, &p.PurchasePrice, &p.SalePrice,
		&p.Stock, &p.MinStock, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if barcode.Valid {
		p.Barcode = barcode.String
	}
	return p, nil
}
