package expenses

import (
	"errors"
	"time"
)

// Category groups expenses for reporting. Payroll postings land in a
// dedicated category so the duplicate-month guard can key on it.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Expense is one dated outgoing amount.
type Expense struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateExpenseRequest carries a new expense payload.
type CreateExpenseRequest struct {
	CategoryID  int64     `json:"category_id" validate:"required,gt=0"`
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description" validate:"required,max=300"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
}

// CreateCategoryRequest carries a new category payload.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ListExpensesRequest filters the expense listing.
type ListExpensesRequest struct {
	CategoryID int64
	From       time.Time
	To         time.Time
	Page       int
	PerPage    int
}

var (
	// ErrNotFound indicates the expense does not exist.
	ErrNotFound = errors.New("expenses: expense not found")
	// ErrCategoryNotFound indicates an unknown expense category.
	ErrCategoryNotFound = errors.New("expenses: category not found")
	// ErrCategoryTaken indicates a duplicate category name.
	ErrCategoryTaken = errors.New("expenses: category name already exists")
)
