package hr

import (
	"errors"
	"time"
)

// Employee is a payroll-eligible staff member.
type Employee struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Position   string    `json:"position"`
	BaseSalary float64   `json:"base_salary"`
	IsActive   bool      `json:"is_active"`
	HiredAt    time.Time `json:"hired_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SalaryAdvance is money paid out ahead of payroll. It reduces the final
// salary for the month containing Date.
type SalaryAdvance struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Date       time.Time `json:"date"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LeaveRecord marks one day of leave for an employee.
type LeaveRecord struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Date       time.Time `json:"date"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateEmployeeRequest carries a new employee payload.
type CreateEmployeeRequest struct {
	Name       string    `json:"name" validate:"required,max=200"`
	Position   string    `json:"position" validate:"max=100"`
	BaseSalary float64   `json:"base_salary" validate:"required,gt=0"`
	HiredAt    time.Time `json:"hired_at" validate:"required"`
}

// UpdateEmployeeRequest is a partial employee update.
type UpdateEmployeeRequest struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Position   *string  `json:"position,omitempty" validate:"omitempty,max=100"`
	BaseSalary *float64 `json:"base_salary,omitempty" validate:"omitempty,gt=0"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// CreateAdvanceRequest carries a salary advance payload.
type CreateAdvanceRequest struct {
	EmployeeID int64     `json:"employee_id" validate:"required,gt=0"`
	Date       time.Time `json:"date" validate:"required"`
	Amount     float64   `json:"amount" validate:"required,gt=0"`
	Note       string    `json:"note" validate:"max=300"`
}

// CreateLeaveRequest carries a leave-day payload.
type CreateLeaveRequest struct {
	EmployeeID int64     `json:"employee_id" validate:"required,gt=0"`
	Date       time.Time `json:"date" validate:"required"`
	Reason     string    `json:"reason" validate:"max=300"`
}

var (
	// ErrNotFound indicates the employee does not exist.
	ErrNotFound = errors.New("hr: employee not found")
	// ErrInactiveEmployee indicates an operation on a deactivated employee.
	ErrInactiveEmployee = errors.New("hr: employee is inactive")
)
