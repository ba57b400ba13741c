package sale

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lmoralesdev/caja-backend/internal/modules/inventory"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// CreateSale reserves stock and inserts the sale with all its lines inside a
// single transaction. A failed reservation aborts everything.
func (r *postgresRepo) CreateSale(ctx context.Context, s *Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, line := range s.Lines {
		if err := inventory.ReserveStockTx(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales
		  (id, sale_number, actor_id, client_id, subtotal, tax_amount, total,
		   payment_method, amount_paid, change_amount, status, sold_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.ID, s.SaleNumber, s.ActorID, s.ClientID, s.Subtotal, s.TaxAmount, s.Total,
		s.PaymentMethod, s.AmountPaid, s.ChangeAmount, s.Status, s.SoldAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, line := range s.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_lines
			  (id, sale_id, product_id, barcode, description, unit_cost,
			   quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			line.ID, s.ID, line.ProductID, nullableString(line.Barcode), line.Description,
			line.UnitCost, line.Quantity, line.UnitPrice, line.LineTotal)
		if err != nil {
			return fmt.Errorf("insert sale_line: %w", err)
		}
	}

	return tx.Commit()
}

// VoidSale restores every line's stock and flips the status, atomically. The
// row lock taken by FOR UPDATE serializes concurrent void attempts.
func (r *postgresRepo) VoidSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status SaleStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM sales WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	if status == SaleVoided {
		return nil, ErrAlreadyVoided
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT product_id, quantity FROM sale_lines WHERE sale_id = $1`, id)
	if err != nil {
		return nil, err
	}
	type release struct {
		productID uuid.UUID
		qty       int
	}
	var releases []release
	for rows.Next() {
		var rel release
		if err := rows.Scan(&rel.productID, &rel.qty); err != nil {
			rows.Close()
			return nil, err
		}
		releases = append(releases, rel)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rel := range releases {
		if err := inventory.ReleaseStockTx(ctx, tx, rel.productID, rel.qty); err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sales SET status = $1, updated_at = $2 WHERE id = $3`,
		SaleVoided, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetSaleByID(ctx, id)
}

func (r *postgresRepo) GetSaleByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	s, err := scanSale(r.db.QueryRowContext(ctx, saleColumns+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	s.Lines, err = r.listLines(ctx, s.ID)
	return s, err
}

func (r *postgresRepo) GetSaleByNumber(ctx context.Context, number string) (*Sale, error) {
	s, err := scanSale(r.db.QueryRowContext(ctx, saleColumns+` WHERE sale_number = $1`, number))
	if err != nil {
		return nil, err
	}
	s.Lines, err = r.listLines(ctx, s.ID)
	return s, err
}

func (r *postgresRepo) ListSalesByDate(ctx context.Context, day time.Time, includeVoided bool) ([]*Sale, error) {
	from := day.Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)
	query := saleColumns + ` WHERE sold_at >= $1 AND sold_at < $2`
	args := []interface{}{from, to}
	if !includeVoided {
		query += ` AND status = $3`
		args = append(args, SaleCompleted)
	}
	query += ` ORDER BY sold_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sales []*Sale
	for rows.Next() {
		s, err := scanSaleRows(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *postgresRepo) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	c := &Client{}
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, phone, created_at FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &phone, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		c.Phone = phone.String
	}
	return c, nil
}

func (r *postgresRepo) FindOrCreateClient(ctx context.Context, name, phone string) (*Client, error) {
	c := &Client{}
	var dbPhone sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, phone, created_at FROM clients WHERE name = $1 LIMIT 1`, name).
		Scan(&c.ID, &c.Name, &dbPhone, &c.CreatedAt)
	if err == nil {
		if dbPhone.Valid {
			c.Phone = dbPhone.String
		}
		return c, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	c = &Client{ID: uuid.New(), Name: name, Phone: phone, CreatedAt: time.Now().UTC()}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, phone, created_at) VALUES ($1,$2,$3,$4)`,
		c.ID, c.Name, nullableString(c.Phone), c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

// ── scanners ──────────────────────────────────────────────────────────────────

const saleColumns = `
	SELECT id, sale_number, actor_id, client_id, subtotal, tax_amount, total,
	       payment_method, amount_paid, change_amount, status, sold_at,
	       created_at, updated_at
	FROM sales`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanSaleFields(row rowScanner) (*Sale, error) {
	s := &Sale{}
	var clientID sql.NullString
	err := row.Scan(&s.ID, &s.SaleNumber, &s.ActorID, &clientID,
		&s.Subtotal, &s.TaxAmount, &s.Total, &s.PaymentMethod,
		&s.AmountPaid, &s.ChangeAmount, &s.Status, &s.SoldAt,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		uid, _ := uuid.Parse(clientID.String)
		s.ClientID = &uid
	}
	return s, nil
}

func scanSale(row *sql.Row) (*Sale, error) {
	s, err := scanSaleFields(row)
	if err == sql.ErrNoRows {
		return nil, ErrSaleNotFound
	}
	return s, err
}

func scanSaleRows(rows *sql.Rows) (*Sale, error) { return scanSaleFields(rows) }

func (r *postgresRepo) listLines(ctx context.Context, saleID uuid.UUID) ([]*SaleLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, barcode, description, unit_cost,
		       quantity, unit_price, line_total, created_at
		FROM sale_lines WHERE sale_id = $1 ORDER BY created_at ASC`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []*SaleLine
	for rows.Next() {
		line := &SaleLine{}
		var barcode sql.NullString
		if err := rows.Scan(&line.ID, &line.SaleID, &line.ProductID, &barcode,
			&line.Description, &line.UnitCost, &line.Quantity,
			&line.UnitPrice, &line.LineTotal, &line.CreatedAt); err != nil {
			return nil, err
		}
		if barcode.Valid {
			line.Barcode = barcode.String
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
