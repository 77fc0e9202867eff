package expenses

import (
	"context"
	"fmt"
	"log/slog"
)

// ReportCache invalidates cached financial reports after expense writes.
type ReportCache interface {
	Bump(ctx context.Context) error
}

// Service provides business logic for expense tracking.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  ReportCache
}

// NewService constructs an expenses service. cache may be nil.
func NewService(logger *slog.Logger, repo Repository, cache ReportCache) *Service {
	return &Service{logger: logger, repo: repo, cache: cache}
}

// CreateExpense records a new expense.
func (s *Service) CreateExpense(ctx context.Context, userID int64, req CreateExpenseRequest) (Expense, error) {
	expense := Expense{
		CategoryID:  req.CategoryID,
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		CreatedBy:   userID,
	}
	created, err := s.repo.Insert(ctx, expense)
	if err != nil {
		return Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.bumpReports(ctx)
	return created, nil
}

// GetExpense loads one expense.
func (s *Service) GetExpense(ctx context.Context, id int64) (Expense, error) {
	return s.repo.Get(ctx, id)
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bumpReports(ctx)
	return nil
}

// ListExpenses returns a filtered page of expenses.
func (s *Service) ListExpenses(ctx context.Context, req ListExpensesRequest) ([]Expense, int, error) {
	return s.repo.List(ctx, req)
}

// CreateCategory registers a named category.
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (Category, error) {
	return s.repo.InsertCategory(ctx, req.Name)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) bumpReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", "error", err)
	}
}
