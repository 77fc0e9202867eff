package hr

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasbook/kasbook/internal/ledger"
)

// Repository defines persistence operations for employees, advances and
// leave records.
type Repository interface {
	InsertEmployee(ctx context.Context, employee Employee) (Employee, error)
	UpdateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	ListEmployees(ctx context.Context, activeOnly bool) ([]Employee, error)
	InsertAdvance(ctx context.Context, advance SalaryAdvance) (SalaryAdvance, error)
	InsertLeave(ctx context.Context, leave LeaveRecord) (LeaveRecord, error)
	ListAdvances(ctx context.Context, employeeID int64, from, to time.Time) ([]SalaryAdvance, error)
	ListLeaves(ctx context.Context, employeeID int64, from, to time.Time) ([]LeaveRecord, error)
	PayrollSnapshot(ctx context.Context, monthStart, monthEnd time.Time) ([]ledger.Employee, []ledger.SalaryAdvance, []ledger.LeaveRecord, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const employeeColumns = `id, name, position, base_salary, is_active, hired_at, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var employee Employee
	err := row.Scan(&employee.ID, &employee.Name, &employee.Position, &employee.BaseSalary, &employee.IsActive, &employee.HiredAt, &employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, err
	}
	return employee, nil
}

// InsertEmployee stores a new employee.
func (r *PGRepository) InsertEmployee(ctx context.Context, employee Employee) (Employee, error) {
	const query = `INSERT INTO employees (name, position, base_salary, is_active, hired_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
RETURNING ` + employeeColumns
	now := time.Now()
	return scanEmployee(r.pool.QueryRow(ctx, query, employee.Name, employee.Position, employee.BaseSalary, employee.IsActive, employee.HiredAt, now))
}

// UpdateEmployee persists employee changes.
func (r *PGRepository) UpdateEmployee(ctx context.Context, employee Employee) error {
	const query = `UPDATE employees SET name=$2, position=$3, base_salary=$4, is_active=$5, updated_at=$6 WHERE id=$1`
	tag, err := r.pool.Exec(ctx, query, employee.ID, employee.Name, employee.Position, employee.BaseSalary, employee.IsActive, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEmployee fetches one employee.
func (r *PGRepository) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	const query = `SELECT ` + employeeColumns + ` FROM employees WHERE id=$1`
	return scanEmployee(r.pool.QueryRow(ctx, query, id))
}

// ListEmployees returns employees ordered by name.
func (r *PGRepository) ListEmployees(ctx context.Context, activeOnly bool) ([]Employee, error) {
	const query = `SELECT ` + employeeColumns + ` FROM employees WHERE (NOT $1 OR is_active) ORDER BY name`
	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, employee)
	}
	return out, rows.Err()
}

// InsertAdvance stores a salary advance.
func (r *PGRepository) InsertAdvance(ctx context.Context, advance SalaryAdvance) (SalaryAdvance, error) {
	const query = `INSERT INTO salary_advances (employee_id, date, amount, note, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, advance.EmployeeID, advance.Date, advance.Amount, advance.Note, time.Now()).
		Scan(&advance.ID, &advance.CreatedAt)
	if err != nil {
		return SalaryAdvance{}, err
	}
	return advance, nil
}

// InsertLeave stores a leave day.
func (r *PGRepository) InsertLeave(ctx context.Context, leave LeaveRecord) (LeaveRecord, error) {
	const query = `INSERT INTO leave_records (employee_id, date, reason, created_at)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, leave.EmployeeID, leave.Date, leave.Reason, time.Now()).
		Scan(&leave.ID, &leave.CreatedAt)
	if err != nil {
		return LeaveRecord{}, err
	}
	return leave, nil
}

// ListAdvances returns advances for an employee inside [from, to).
// employeeID zero lists all employees.
func (r *PGRepository) ListAdvances(ctx context.Context, employeeID int64, from, to time.Time) ([]SalaryAdvance, error) {
	const query = `SELECT id, employee_id, date, amount, note, created_at FROM salary_advances
WHERE ($1 = 0 OR employee_id = $1)
  AND ($2::timestamptz IS NULL OR date >= $2)
  AND ($3::timestamptz IS NULL OR date < $3)
ORDER BY date DESC`
	rows, err := r.pool.Query(ctx, query, employeeID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SalaryAdvance
	for rows.Next() {
		var advance SalaryAdvance
		if err := rows.Scan(&advance.ID, &advance.EmployeeID, &advance.Date, &advance.Amount, &advance.Note, &advance.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, advance)
	}
	return out, rows.Err()
}

// ListLeaves returns leave days for an employee inside [from, to).
func (r *PGRepository) ListLeaves(ctx context.Context, employeeID int64, from, to time.Time) ([]LeaveRecord, error) {
	const query = `SELECT id, employee_id, date, reason, created_at FROM leave_records
WHERE ($1 = 0 OR employee_id = $1)
  AND ($2::timestamptz IS NULL OR date >= $2)
  AND ($3::timestamptz IS NULL OR date < $3)
ORDER BY date DESC`
	rows, err := r.pool.Query(ctx, query, employeeID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LeaveRecord
	for rows.Next() {
		var leave LeaveRecord
		if err := rows.Scan(&leave.ID, &leave.EmployeeID, &leave.Date, &leave.Reason, &leave.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, leave)
	}
	return out, rows.Err()
}

// PayrollSnapshot loads the active-employee roster plus the month's advances
// and leaves as ledger value types.
func (r *PGRepository) PayrollSnapshot(ctx context.Context, monthStart, monthEnd time.Time) ([]ledger.Employee, []ledger.SalaryAdvance, []ledger.LeaveRecord, error) {
	employees := []ledger.Employee{}
	rows, err := r.pool.Query(ctx, `SELECT id, name, base_salary FROM employees WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, nil, nil, err
	}
	for rows.Next() {
		var employee ledger.Employee
		if err := rows.Scan(&employee.ID, &employee.Name, &employee.BaseSalary); err != nil {
			rows.Close()
			return nil, nil, nil, err
		}
		employees = append(employees, employee)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}

	advances := []ledger.SalaryAdvance{}
	rows, err = r.pool.Query(ctx, `SELECT id, employee_id, date, amount FROM salary_advances WHERE date >= $1 AND date < $2`, monthStart, monthEnd)
	if err != nil {
		return nil, nil, nil, err
	}
	for rows.Next() {
		var advance ledger.SalaryAdvance
		if err := rows.Scan(&advance.ID, &advance.EmployeeID, &advance.Date, &advance.Amount); err != nil {
			rows.Close()
			return nil, nil, nil, err
		}
		advances = append(advances, advance)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}

	leaves := []ledger.LeaveRecord{}
	rows, err = r.pool.Query(ctx, `SELECT id, employee_id, date FROM leave_records WHERE date >= $1 AND date < $2`, monthStart, monthEnd)
	if err != nil {
		return nil, nil, nil, err
	}
	for rows.Next() {
		var leave ledger.LeaveRecord
		if err := rows.Scan(&leave.ID, &leave.EmployeeID, &leave.Date); err != nil {
			rows.Close()
			return nil, nil, nil, err
		}
		leaves = append(leaves, leave)
	}
	rows.Close()
	return employees, advances, leaves, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ Repository = (*PGRepository)(nil)
