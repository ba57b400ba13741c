package migrations

import (
	"database/sql"
	"fmt"
)

// Run creates the database schema required by the sale and reconciliation
// core. Statements are idempotent so the bootstrap can run on every start.
func Run(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			barcode TEXT,
			description TEXT NOT NULL,
			purchase_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			sale_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			min_stock INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_barcode_active
			ON products (barcode) WHERE barcode IS NOT NULL AND status = 'ACTIVE';`,
		`CREATE TABLE IF NOT EXISTS clients (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS sales (
			id UUID PRIMARY KEY,
			sale_number TEXT NOT NULL UNIQUE,
			actor_id UUID NOT NULL,
			client_id UUID REFERENCES clients(id),
			subtotal NUMERIC(12,2) NOT NULL,
			tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			total NUMERIC(12,2) NOT NULL,
			payment_method TEXT NOT NULL,
			amount_paid NUMERIC(12,2) NOT NULL,
			change_amount NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (change_amount >= 0),
			status TEXT NOT NULL DEFAULT 'COMPLETED',
			sold_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_sold_at ON sales (sold_at);`,
		`CREATE TABLE IF NOT EXISTS sale_lines (
			id UUID PRIMARY KEY,
			sale_id UUID NOT NULL REFERENCES sales(id),
			product_id UUID NOT NULL REFERENCES products(id),
			barcode TEXT,
			description TEXT NOT NULL,
			unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(12,2) NOT NULL,
			line_total NUMERIC(12,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sale_lines_sale ON sale_lines (sale_id);`,
		`CREATE TABLE IF NOT EXISTS cash_movements (
			id UUID PRIMARY KEY,
			type TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
			description TEXT NOT NULL,
			actor_id UUID NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cash_movements_occurred ON cash_movements (occurred_at);`,
		`CREATE TABLE IF NOT EXISTS cash_closures (
			id UUID PRIMARY KEY,
			actor_id UUID NOT NULL,
			closed_at TIMESTAMPTZ NOT NULL,
			sales_cash NUMERIC(12,2) NOT NULL,
			sales_digital NUMERIC(12,2) NOT NULL,
			manual_incomes NUMERIC(12,2) NOT NULL,
			manual_expenses NUMERIC(12,2) NOT NULL,
			expected_cash NUMERIC(12,2) NOT NULL,
			counted_cash NUMERIC(12,2) NOT NULL,
			difference NUMERIC(12,2) NOT NULL,
			notes TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cash_closures_closed ON cash_closures (closed_at);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
