package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasbook/kasbook/internal/ledger"
)

// TxRepository exposes the operations available inside a sales transaction.
type TxRepository interface {
	InsertSale(ctx context.Context, sale Sale) (Sale, error)
	InsertItems(ctx context.Context, saleID int64, items []SaleItem) ([]SaleItem, error)
	UpdateStatus(ctx context.Context, saleID int64, from, to ledger.SaleStatus) error
	AdjustProductStock(ctx context.Context, productID int64, delta float64) error
	NextNumber(ctx context.Context, date time.Time) (string, error)
}

// Repository defines persistence operations for sales documents.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id int64) (Sale, error)
	ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
	SnapshotSales(ctx context.Context, from, to time.Time) ([]ledger.Sale, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// WithTx executes fn inside a repeatable-read transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("sales: repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
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

// InsertSale stores the sale header.
func (t *txRepo) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	const query = `INSERT INTO sales (number, date, status, customer_name, total, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
RETURNING id, created_at, updated_at`
	now := time.Now()
	err := t.tx.QueryRow(ctx, query, sale.Number, sale.Date, string(sale.Status), sale.CustomerName, sale.Total, sale.CreatedBy, now).
		Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// InsertItems stores the sale lines.
func (t *txRepo) InsertItems(ctx context.Context, saleID int64, items []SaleItem) ([]SaleItem, error) {
	const query = `INSERT INTO sale_items (sale_id, product_id, quantity, sell_price, cogs, line_total)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id`
	out := make([]SaleItem, 0, len(items))
	for _, item := range items {
		item.SaleID = saleID
		if err := t.tx.QueryRow(ctx, query, saleID, item.ProductID, item.Quantity, item.SellPrice, item.COGS, item.LineTotal).Scan(&item.ID); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// UpdateStatus moves a sale between statuses; the WHERE clause guards against
// concurrent transitions racing past the service-level check.
func (t *txRepo) UpdateStatus(ctx context.Context, saleID int64, from, to ledger.SaleStatus) error {
	const query = `UPDATE sales SET status=$3, updated_at=$4 WHERE id=$1 AND status=$2`
	tag, err := t.tx.Exec(ctx, query, saleID, string(from), string(to), time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// AdjustProductStock applies a stock delta to the catalog inside the sale
// transaction so document and inventory move together.
func (t *txRepo) AdjustProductStock(ctx context.Context, productID int64, delta float64) error {
	const query = `UPDATE products SET stock = stock + $2, updated_at = $3 WHERE id = $1`
	tag, err := t.tx.Exec(ctx, query, productID, delta, time.Now())
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
	if err := t.tx.QueryRow(ctx, `SELECT nextval('sale_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("SAL-%s-%05d", date.Format("20060102"), seq), nil
}

// GetSale fetches a sale with its items.
func (r *PGRepository) GetSale(ctx context.Context, id int64) (Sale, error) {
	const query = `SELECT id, number, date, status, customer_name, total, created_by, created_at, updated_at
FROM sales WHERE id=$1`
	var sale Sale
	var status string
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&sale.ID, &sale.Number, &sale.Date, &status, &sale.CustomerName, &sale.Total, &sale.CreatedBy, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrNotFound
		}
		return Sale{}, err
	}
	sale.Status = ledger.SaleStatus(status)
	items, err := r.loadItems(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	sale.Items = items
	return sale, nil
}

// ListSales returns a filtered page of sales headers plus the unpaged total.
func (r *PGRepository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	const filter = ` WHERE ($1 = '' OR status = $1)
  AND ($2::timestamptz IS NULL OR date >= $2)
  AND ($3::timestamptz IS NULL OR date < $3)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`+filter,
		string(req.Status), nullTime(req.From), nullTime(req.To)).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT id, number, date, status, customer_name, total, created_by, created_at, updated_at FROM sales` +
		filter + ` ORDER BY date DESC, id DESC LIMIT $4 OFFSET $5`
	rows, err := r.pool.Query(ctx, query,
		string(req.Status), nullTime(req.From), nullTime(req.To), req.PerPage, (req.Page-1)*req.PerPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var sales []Sale
	for rows.Next() {
		var sale Sale
		var status string
		if err := rows.Scan(&sale.ID, &sale.Number, &sale.Date, &status, &sale.CustomerName, &sale.Total, &sale.CreatedBy, &sale.CreatedAt, &sale.UpdatedAt); err != nil {
			return nil, 0, err
		}
		sale.Status = ledger.SaleStatus(status)
		sales = append(sales, sale)
	}
	return sales, total, rows.Err()
}

// SnapshotSales loads sale value snapshots, items included, for the ledger
// engine. The range is [from, to); zero times disable that bound.
func (r *PGRepository) SnapshotSales(ctx context.Context, from, to time.Time) ([]ledger.Sale, error) {
	const query = `SELECT s.id, s.date, s.status, s.total,
  i.product_id, i.quantity, i.sell_price, i.cogs
FROM sales s
LEFT JOIN sale_items i ON i.sale_id = s.id
WHERE ($1::timestamptz IS NULL OR s.date >= $1)
  AND ($2::timestamptz IS NULL OR s.date < $2)
ORDER BY s.id`
	rows, err := r.pool.Query(ctx, query, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var snapshots []ledger.Sale
	var current *ledger.Sale
	for rows.Next() {
		var (
			id        int64
			date      time.Time
			status    string
			total     float64
			productID *int64
			quantity  *float64
			sellPrice *float64
			cogs      *float64
		)
		if err := rows.Scan(&id, &date, &status, &total, &productID, &quantity, &sellPrice, &cogs); err != nil {
			return nil, err
		}
		if current == nil || current.ID != id {
			snapshots = append(snapshots, ledger.Sale{ID: id, Date: date, Status: ledger.SaleStatus(status), Total: total})
			current = &snapshots[len(snapshots)-1]
		}
		if productID != nil {
			current.Items = append(current.Items, ledger.SaleItem{
				ProductID: *productID,
				Quantity:  deref(quantity),
				SellPrice: deref(sellPrice),
				COGS:      cogs,
			})
		}
	}
	return snapshots, rows.Err()
}

func (r *PGRepository) loadItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	const query = `SELECT id, sale_id, product_id, quantity, sell_price, cogs, line_total
FROM sale_items WHERE sale_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SaleItem
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.SellPrice, &item.COGS, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

var _ Repository = (*PGRepository)(nil)
