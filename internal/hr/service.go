package hr

import (
	"context"
	"fmt"
	"time"
)

// Service provides business logic for employee administration.
type Service struct {
	repo Repository
}

// NewService constructs an HR service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateEmployee registers a new active employee.
func (s *Service) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (Employee, error) {
	employee := Employee{
		Name:       req.Name,
		Position:   req.Position,
		BaseSalary: req.BaseSalary,
		HiredAt:    req.HiredAt,
		IsActive:   true,
	}
	created, err := s.repo.InsertEmployee(ctx, employee)
	if err != nil {
		return Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return created, nil
}

// UpdateEmployee applies a partial update.
func (s *Service) UpdateEmployee(ctx context.Context, id int64, req UpdateEmployeeRequest) (Employee, error) {
	employee, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if req.Name != nil {
		employee.Name = *req.Name
	}
	if req.Position != nil {
		employee.Position = *req.Position
	}
	if req.BaseSalary != nil {
		employee.BaseSalary = *req.BaseSalary
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}
	if err := s.repo.UpdateEmployee(ctx, employee); err != nil {
		return Employee{}, fmt.Errorf("update employee: %w", err)
	}
	return employee, nil
}

// GetEmployee loads one employee.
func (s *Service) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

// ListEmployees returns the roster.
func (s *Service) ListEmployees(ctx context.Context, activeOnly bool) ([]Employee, error) {
	return s.repo.ListEmployees(ctx, activeOnly)
}

// RecordAdvance stores a salary advance for an active employee.
func (s *Service) RecordAdvance(ctx context.Context, req CreateAdvanceRequest) (SalaryAdvance, error) {
	employee, err := s.repo.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return SalaryAdvance{}, err
	}
	if !employee.IsActive {
		return SalaryAdvance{}, ErrInactiveEmployee
	}
	advance := SalaryAdvance{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Amount:     req.Amount,
		Note:       req.Note,
	}
	return s.repo.InsertAdvance(ctx, advance)
}

// RecordLeave stores a leave day for an active employee.
func (s *Service) RecordLeave(ctx context.Context, req CreateLeaveRequest) (LeaveRecord, error) {
	employee, err := s.repo.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return LeaveRecord{}, err
	}
	if !employee.IsActive {
		return LeaveRecord{}, ErrInactiveEmployee
	}
	leave := LeaveRecord{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Reason:     req.Reason,
	}
	return s.repo.InsertLeave(ctx, leave)
}

// ListAdvances returns advances, optionally scoped by employee and range.
func (s *Service) ListAdvances(ctx context.Context, employeeID int64, from, to time.Time) ([]SalaryAdvance, error) {
	return s.repo.ListAdvances(ctx, employeeID, from, to)
}

// ListLeaves returns leave days, optionally scoped by employee and range.
func (s *Service) ListLeaves(ctx context.Context, employeeID int64, from, to time.Time) ([]LeaveRecord, error) {
	return s.repo.ListLeaves(ctx, employeeID, from, to)
}
