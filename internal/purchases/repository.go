package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasbook/kasbook/internal/ledger"
)

// TxRepository exposes the operations available inside a purchase transaction.
type TxRepository interface {
	InsertPurchase(ctx context.Context, purchase Purchase) (Purchase, error)
	InsertItems(ctx context.Context, purchaseID int64, items []PurchaseItem) ([]PurchaseItem, error)
	ReceiveStock(ctx context.Context, productID int64, quantity, unitCost float64) error
	NextNumber(ctx context.Context, date time.Time) (string, error)
}

// Repository defines persistence operations for purchases.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPurchase(ctx context.Context, id int64) (Purchase, error)
	ListPurchases(ctx context.Context, req ListPurchasesRequest) ([]Purchase, int, error)
	SnapshotPurchases(ctx context.Context, from, to time.Time) ([]ledger.MonetaryRecord, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// WithTx executes fn inside a transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("purchases: repository not initialised")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepo struct {
	tx pgx.Tx
}

// InsertPurchase stores the purchase header.
func (t *txRepo) InsertPurchase(ctx context.Context, purchase Purchase) (Purchase, error) {
	const query = `INSERT INTO purchases (number, date, supplier_name, total, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at`
	err := t.tx.QueryRow(ctx, query, purchase.Number, purchase.Date, purchase.SupplierName, purchase.Total, purchase.CreatedBy, time.Now()).
		Scan(&purchase.ID, &purchase.CreatedAt)
	if err != nil {
		return Purchase{}, err
	}
	return purchase, nil
}

// InsertItems stores the purchase lines.
func (t *txRepo) InsertItems(ctx context.Context, purchaseID int64, items []PurchaseItem) ([]PurchaseItem, error) {
	const query = `INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_cost, line_total)
VALUES ($1,$2,$3,$4,$5)
RETURNING id`
	out := make([]PurchaseItem, 0, len(items))
	for _, item := range items {
		item.PurchaseID = purchaseID
		if err := t.tx.QueryRow(ctx, query, purchaseID, item.ProductID, item.Quantity, item.UnitCost, item.LineTotal).Scan(&item.ID); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// ReceiveStock increments stock and refreshes the buy price in one statement.
func (t *txRepo) ReceiveStock(ctx context.Context, productID int64, quantity, unitCost float64) error {
	const query = `UPDATE products SET stock = stock + $2, buy_price = $3, updated_at = $4 WHERE id = $1`
	tag, err := t.tx.Exec(ctx, query, productID, quantity, unitCost, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownProduct
	}
	return nil
}

// NextNumber allocates the next document number for the date.
func (t *txRepo) NextNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	if err := t.tx.QueryRow(ctx, `SELECT nextval('purchase_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("PUR-%s-%05d", date.Format("20060102"), seq), nil
}

// GetPurchase fetches a purchase with its items.
func (r *PGRepository) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	const query = `SELECT id, number, date, supplier_name, total, created_by, created_at
FROM purchases WHERE id=$1`
	var purchase Purchase
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&purchase.ID, &purchase.Number, &purchase.Date, &purchase.SupplierName, &purchase.Total, &purchase.CreatedBy, &purchase.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Purchase{}, ErrNotFound
		}
		return Purchase{}, err
	}
	const itemQuery = `SELECT id, purchase_id, product_id, quantity, unit_cost, line_total
FROM purchase_items WHERE purchase_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, itemQuery, id)
	if err != nil {
		return Purchase{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item PurchaseItem
		if err := rows.Scan(&item.ID, &item.PurchaseID, &item.ProductID, &item.Quantity, &item.UnitCost, &item.LineTotal); err != nil {
			return Purchase{}, err
		}
		purchase.Items = append(purchase.Items, item)
	}
	return purchase, rows.Err()
}

// ListPurchases returns a filtered page of purchase headers.
func (r *PGRepository) ListPurchases(ctx context.Context, req ListPurchasesRequest) ([]Purchase, int, error) {
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	const filter = ` WHERE ($1::timestamptz IS NULL OR date >= $1)
  AND ($2::timestamptz IS NULL OR date < $2)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases`+filter,
		nullTime(req.From), nullTime(req.To)).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT id, number, date, supplier_name, total, created_by, created_at FROM purchases` +
		filter + ` ORDER BY date DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, nullTime(req.From), nullTime(req.To), req.PerPage, (req.Page-1)*req.PerPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Purchase
	for rows.Next() {
		var purchase Purchase
		if err := rows.Scan(&purchase.ID, &purchase.Number, &purchase.Date, &purchase.SupplierName, &purchase.Total, &purchase.CreatedBy, &purchase.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, purchase)
	}
	return out, total, rows.Err()
}

// SnapshotPurchases loads dated purchase totals for cash-out aggregation.
func (r *PGRepository) SnapshotPurchases(ctx context.Context, from, to time.Time) ([]ledger.MonetaryRecord, error) {
	const query = `SELECT date, total FROM purchases
WHERE ($1::timestamptz IS NULL OR date >= $1)
  AND ($2::timestamptz IS NULL OR date < $2)
ORDER BY date`
	rows, err := r.pool.Query(ctx, query, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.MonetaryRecord
	for rows.Next() {
		var record ledger.MonetaryRecord
		if err := rows.Scan(&record.Date, &record.Amount); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ Repository = (*PGRepository)(nil)
