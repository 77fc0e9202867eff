package hr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbook/kasbook/internal/ledger"
)

type mockRepository struct {
	employees map[int64]*Employee
	advances  []SalaryAdvance
	leaves    []LeaveRecord
	nextID    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{employees: make(map[int64]*Employee), nextID: 1}
}

func (m *mockRepository) InsertEmployee(ctx context.Context, employee Employee) (Employee, error) {
	employee.ID = m.nextID
	m.nextID++
	stored := employee
	m.employees[employee.ID] = &stored
	return employee, nil
}

func (m *mockRepository) UpdateEmployee(ctx context.Context, employee Employee) error {
	if _, ok := m.employees[employee.ID]; !ok {
		return ErrNotFound
	}
	stored := employee
	m.employees[employee.ID] = &stored
	return nil
}

func (m *mockRepository) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	employee, ok := m.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return *employee, nil
}

func (m *mockRepository) ListEmployees(ctx context.Context, activeOnly bool) ([]Employee, error) {
	var out []Employee
	for _, employee := range m.employees {
		if activeOnly && !employee.IsActive {
			continue
		}
		out = append(out, *employee)
	}
	return out, nil
}

func (m *mockRepository) InsertAdvance(ctx context.Context, advance SalaryAdvance) (SalaryAdvance, error) {
	advance.ID = int64(len(m.advances) + 1)
	m.advances = append(m.advances, advance)
	return advance, nil
}

func (m *mockRepository) InsertLeave(ctx context.Context, leave LeaveRecord) (LeaveRecord, error) {
	leave.ID = int64(len(m.leaves) + 1)
	m.leaves = append(m.leaves, leave)
	return leave, nil
}

func (m *mockRepository) ListAdvances(ctx context.Context, employeeID int64, from, to time.Time) ([]SalaryAdvance, error) {
	var out []SalaryAdvance
	for _, advance := range m.advances {
		if employeeID != 0 && advance.EmployeeID != employeeID {
			continue
		}
		out = append(out, advance)
	}
	return out, nil
}

func (m *mockRepository) ListLeaves(ctx context.Context, employeeID int64, from, to time.Time) ([]LeaveRecord, error) {
	var out []LeaveRecord
	for _, leave := range m.leaves {
		if employeeID != 0 && leave.EmployeeID != employeeID {
			continue
		}
		out = append(out, leave)
	}
	return out, nil
}

func (m *mockRepository) PayrollSnapshot(ctx context.Context, monthStart, monthEnd time.Time) ([]ledger.Employee, []ledger.SalaryAdvance, []ledger.LeaveRecord, error) {
	var employees []ledger.Employee
	for _, employee := range m.employees {
		if employee.IsActive {
			employees = append(employees, ledger.Employee{ID: employee.ID, Name: employee.Name, BaseSalary: employee.BaseSalary})
		}
	}
	var advances []ledger.SalaryAdvance
	for _, advance := range m.advances {
		if !advance.Date.Before(monthStart) && advance.Date.Before(monthEnd) {
			advances = append(advances, ledger.SalaryAdvance{ID: advance.ID, EmployeeID: advance.EmployeeID, Date: advance.Date, Amount: advance.Amount})
		}
	}
	var leaves []ledger.LeaveRecord
	for _, leave := range m.leaves {
		if !leave.Date.Before(monthStart) && leave.Date.Before(monthEnd) {
			leaves = append(leaves, ledger.LeaveRecord{ID: leave.ID, EmployeeID: leave.EmployeeID, Date: leave.Date})
		}
	}
	return employees, advances, leaves, nil
}

func TestUpdateEmployeePartial(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, CreateEmployeeRequest{
		Name:       "Budi Santoso",
		Position:   "Kasir",
		BaseSalary: 3000000,
		HiredAt:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	newSalary := 3500000.0
	updated, err := svc.UpdateEmployee(ctx, created.ID, UpdateEmployeeRequest{BaseSalary: &newSalary})
	require.NoError(t, err)
	assert.Equal(t, 3500000.0, updated.BaseSalary)
	assert.Equal(t, "Budi Santoso", updated.Name, "unset fields must survive a partial update")
}

func TestRecordAdvanceRejectsInactiveEmployee(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, CreateEmployeeRequest{
		Name:       "Siti Rahma",
		BaseSalary: 2800000,
		HiredAt:    time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateEmployee(ctx, created.ID, UpdateEmployeeRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.RecordAdvance(ctx, CreateAdvanceRequest{
		EmployeeID: created.ID,
		Date:       time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Amount:     500000,
	})
	assert.ErrorIs(t, err, ErrInactiveEmployee)
}

func TestPayrollSnapshotScopesToMonth(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	employee, err := svc.CreateEmployee(ctx, CreateEmployeeRequest{
		Name:       "Budi Santoso",
		BaseSalary: 3000000,
		HiredAt:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = svc.RecordAdvance(ctx, CreateAdvanceRequest{EmployeeID: employee.ID, Date: time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), Amount: 500000})
	require.NoError(t, err)
	_, err = svc.RecordAdvance(ctx, CreateAdvanceRequest{EmployeeID: employee.ID, Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Amount: 200000})
	require.NoError(t, err)
	_, err = svc.RecordLeave(ctx, CreateLeaveRequest{EmployeeID: employee.ID, Date: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	employees, advances, leaves, err := repo.PayrollSnapshot(ctx, april, april.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, employees, 1)
	require.Len(t, advances, 1, "next month's advance is out of scope")
	assert.Equal(t, 500000.0, advances[0].Amount)
	require.Len(t, leaves, 1)
}
