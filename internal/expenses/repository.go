package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasbook/kasbook/internal/ledger"
	"github.com/kasbook/kasbook/internal/shared"
)

// Repository defines persistence operations for expenses and categories.
type Repository interface {
	Insert(ctx context.Context, expense Expense) (Expense, error)
	Get(ctx context.Context, id int64) (Expense, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req ListExpensesRequest) ([]Expense, int, error)
	InsertCategory(ctx context.Context, name string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CategoryByName(ctx context.Context, name string) (Category, error)
	ExistsInMonth(ctx context.Context, categoryID int64, monthStart, monthEnd time.Time) (bool, error)
	SnapshotExpenses(ctx context.Context, from, to time.Time) ([]ledger.Expense, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a new expense.
func (r *PGRepository) Insert(ctx context.Context, expense Expense) (Expense, error) {
	const query = `INSERT INTO expenses (category_id, date, description, amount, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, expense.CategoryID, expense.Date, expense.Description, expense.Amount, expense.CreatedBy, time.Now()).
		Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return Expense{}, err
	}
	return expense, nil
}

// Get fetches one expense with its category name.
func (r *PGRepository) Get(ctx context.Context, id int64) (Expense, error) {
	const query = `SELECT e.id, e.category_id, c.name, e.date, e.description, e.amount, e.created_by, e.created_at
FROM expenses e JOIN expense_categories c ON c.id = e.category_id
WHERE e.id = $1`
	var expense Expense
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&expense.ID, &expense.CategoryID, &expense.CategoryName, &expense.Date, &expense.Description, &expense.Amount, &expense.CreatedBy, &expense.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ErrNotFound
		}
		return Expense{}, err
	}
	return expense, nil
}

// Delete removes an expense.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a filtered page of expenses plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, req ListExpensesRequest) ([]Expense, int, error) {
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	const filter = ` WHERE ($1 = 0 OR e.category_id = $1)
  AND ($2::timestamptz IS NULL OR e.date >= $2)
  AND ($3::timestamptz IS NULL OR e.date < $3)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses e`+filter,
		req.CategoryID, nullTime(req.From), nullTime(req.To)).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT e.id, e.category_id, c.name, e.date, e.description, e.amount, e.created_by, e.created_at
FROM expenses e JOIN expense_categories c ON c.id = e.category_id` +
		filter + ` ORDER BY e.date DESC, e.id DESC LIMIT $4 OFFSET $5`
	rows, err := r.pool.Query(ctx, query,
		req.CategoryID, nullTime(req.From), nullTime(req.To), req.PerPage, (req.Page-1)*req.PerPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		var expense Expense
		if err := rows.Scan(&expense.ID, &expense.CategoryID, &expense.CategoryName, &expense.Date, &expense.Description, &expense.Amount, &expense.CreatedBy, &expense.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, expense)
	}
	return out, total, rows.Err()
}

// InsertCategory creates a named category.
func (r *PGRepository) InsertCategory(ctx context.Context, name string) (Category, error) {
	const query = `INSERT INTO expense_categories (name) VALUES ($1) RETURNING id`
	category := Category{Name: name}
	if err := r.pool.QueryRow(ctx, query, name).Scan(&category.ID); err != nil {
		if shared.UniqueViolation(err) {
			return Category{}, ErrCategoryTaken
		}
		return Category{}, err
	}
	return category, nil
}

// ListCategories returns all categories by name.
func (r *PGRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM expense_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, rows.Err()
}

// CategoryByName resolves a category by exact name.
func (r *PGRepository) CategoryByName(ctx context.Context, name string) (Category, error) {
	var category Category
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM expense_categories WHERE name=$1`, name).
		Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		return Category{}, err
	}
	return category, nil
}

// ExistsInMonth reports whether the category already has an expense inside
// [monthStart, monthEnd). The payroll finalizer uses this as its
// already-posted guard.
func (r *PGRepository) ExistsInMonth(ctx context.Context, categoryID int64, monthStart, monthEnd time.Time) (bool, error) {
	const query = `SELECT EXISTS (
  SELECT 1 FROM expenses WHERE category_id=$1 AND date >= $2 AND date < $3
)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, categoryID, monthStart, monthEnd).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// SnapshotExpenses loads expense value snapshots for the ledger engine.
// The range is [from, to); zero times disable that bound.
func (r *PGRepository) SnapshotExpenses(ctx context.Context, from, to time.Time) ([]ledger.Expense, error) {
	const query = `SELECT id, date, amount, category_id FROM expenses
WHERE ($1::timestamptz IS NULL OR date >= $1)
  AND ($2::timestamptz IS NULL OR date < $2)
ORDER BY date`
	rows, err := r.pool.Query(ctx, query, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.Expense
	for rows.Next() {
		var expense ledger.Expense
		if err := rows.Scan(&expense.ID, &expense.Date, &expense.Amount, &expense.CategoryID); err != nil {
			return nil, err
		}
		out = append(out, expense)
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
