package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append writes the sale and its lines in one transaction.
func (r *PostgresRepository) Append(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CommittedAt.IsZero() {
		e.CommittedAt = time.Now().UTC()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO sale_journal (
			id, session_id, cashier, order_id, transaction_id, customer_id,
			subtotal, tax_amount, total, amount_paid, change,
			payment_method, currency, committed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, e.ID, e.SessionID, e.Cashier, e.OrderID, e.TransactionID, nullable(e.CustomerID),
		e.Subtotal, e.TaxAmount, e.Total, e.AmountPaid, e.Change,
		e.PaymentMethod, e.Currency, e.CommittedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, ln := range e.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_journal_lines (
				id, sale_id, product_id, title, sku, variant_sku,
				quantity, unit_price, discount
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, uuid.NewString(), e.ID, ln.ProductID, ln.Title, ln.SKU, nullable(ln.VariantSKU),
			ln.Quantity, ln.UnitPrice, ln.Discount)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListSince returns sales committed at or after the given time, oldest first,
// with their lines loaded.
func (r *PostgresRepository) ListSince(ctx context.Context, since time.Time) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, cashier, order_id, transaction_id, COALESCE(customer_id, ''),
		       subtotal, tax_amount, total, amount_paid, change,
		       payment_method, currency, committed_at
		FROM sale_journal
		WHERE committed_at >= $1
		ORDER BY committed_at ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Cashier, &e.OrderID, &e.TransactionID, &e.CustomerID,
			&e.Subtotal, &e.TaxAmount, &e.Total, &e.AmountPaid, &e.Change,
			&e.PaymentMethod, &e.Currency, &e.CommittedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range entries {
		lines, err := r.listLines(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Lines = lines
	}
	return entries, nil
}

func (r *PostgresRepository) listLines(ctx context.Context, saleID string) ([]EntryLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, title, sku, COALESCE(variant_sku, ''), quantity, unit_price, discount
		FROM sale_journal_lines
		WHERE sale_id = $1
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("select sale lines: %w", err)
	}
	defer rows.Close()

	var lines []EntryLine
	for rows.Next() {
		var ln EntryLine
		if err := rows.Scan(&ln.ProductID, &ln.Title, &ln.SKU, &ln.VariantSKU,
			&ln.Quantity, &ln.UnitPrice, &ln.Discount); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return lines, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
