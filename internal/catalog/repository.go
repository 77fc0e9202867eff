package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasbook/kasbook/internal/shared"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Insert(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) error
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	AdjustStock(ctx context.Context, id int64, delta float64) error
	BuyPrices(ctx context.Context, ids []int64) (map[int64]float64, error)
	ListBelowThreshold(ctx context.Context) ([]Product, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const productColumns = `id, sku, name, buy_price, sell_price, stock, low_stock_threshold, is_active, created_at, updated_at`

// Insert stores a new product.
func (r *PGRepository) Insert(ctx context.Context, p Product) (Product, error) {
	const query = `INSERT INTO products (sku, name, buy_price, sell_price, stock, low_stock_threshold, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,TRUE,$7,$7)
RETURNING ` + productColumns
	row := r.pool.QueryRow(ctx, query, p.SKU, p.Name, p.BuyPrice, p.SellPrice, p.Stock, p.LowStockThreshold, time.Now())
	created, err := scanProduct(row)
	if err != nil {
		if shared.UniqueViolation(err) {
			return Product{}, ErrSKUTaken
		}
		return Product{}, err
	}
	return created, nil
}

// Update rewrites the mutable product fields.
func (r *PGRepository) Update(ctx context.Context, p Product) error {
	const query = `UPDATE products
SET name=$2, buy_price=$3, sell_price=$4, low_stock_threshold=$5, is_active=$6, updated_at=$7
WHERE id=$1`
	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.BuyPrice, p.SellPrice, p.LowStockThreshold, p.IsActive, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get loads one product by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// List returns a filtered product page plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	page := shared.NewPagination(req.Page, req.PerPage, 0)
	var total int
	const countQuery = `SELECT COUNT(*) FROM products
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
  AND (NOT $2 OR is_active)`
	if err := r.pool.QueryRow(ctx, countQuery, req.Search, req.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}
	const query = `SELECT ` + productColumns + ` FROM products
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
  AND (NOT $2 OR is_active)
ORDER BY name
LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, req.Search, req.ActiveOnly, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// AdjustStock applies a signed stock delta, refusing to go negative.
func (r *PGRepository) AdjustStock(ctx context.Context, id int64, delta float64) error {
	const query = `UPDATE products SET stock = stock + $2, updated_at = $3
WHERE id = $1 AND stock + $2 >= 0`
	tag, err := r.pool.Exec(ctx, query, id, delta, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the product is gone or the delta would drive stock negative.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

// BuyPrices resolves buy prices for a set of product ids. Missing ids are
// simply absent from the result; the profit calculator treats that as a
// lookup miss.
func (r *PGRepository) BuyPrices(ctx context.Context, ids []int64) (map[int64]float64, error) {
	prices := make(map[int64]float64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}
	const query = `SELECT id, buy_price FROM products WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var price float64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

// ListBelowThreshold returns active products at or under their low-stock mark.
func (r *PGRepository) ListBelowThreshold(ctx context.Context) ([]Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products
WHERE is_active AND low_stock_threshold > 0 AND stock <= low_stock_threshold
ORDER BY stock / NULLIF(low_stock_threshold, 0)`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.BuyPrice, &p.SellPrice, &p.Stock, &p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: scan product: %w", err)
	}
	return p, nil
}

var _ Repository = (*PGRepository)(nil)
