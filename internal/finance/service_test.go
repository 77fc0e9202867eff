package finance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbook/kasbook/internal/expenses"
	"github.com/kasbook/kasbook/internal/ledger"
	"github.com/kasbook/kasbook/internal/shared"
)

type mockSales struct {
	sales []ledger.Sale
}

func (m *mockSales) SnapshotSales(ctx context.Context, from, to time.Time) ([]ledger.Sale, error) {
	return m.sales, nil
}

type mockExpenses struct {
	records    []ledger.Expense
	categories map[string]expenses.Category
	inserted   []expenses.Expense
	nextID     int64
}

func newMockExpenses() *mockExpenses {
	return &mockExpenses{categories: make(map[string]expenses.Category), nextID: 1}
}

func (m *mockExpenses) SnapshotExpenses(ctx context.Context, from, to time.Time) ([]ledger.Expense, error) {
	return m.records, nil
}

func (m *mockExpenses) CategoryByName(ctx context.Context, name string) (expenses.Category, error) {
	category, ok := m.categories[name]
	if !ok {
		return expenses.Category{}, expenses.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockExpenses) ExistsInMonth(ctx context.Context, categoryID int64, monthStart, monthEnd time.Time) (bool, error) {
	for _, expense := range m.inserted {
		if expense.CategoryID == categoryID && !expense.Date.Before(monthStart) && expense.Date.Before(monthEnd) {
			return true, nil
		}
	}
	for _, record := range m.records {
		if record.CategoryID == categoryID && !record.Date.Before(monthStart) && record.Date.Before(monthEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockExpenses) Insert(ctx context.Context, expense expenses.Expense) (expenses.Expense, error) {
	expense.ID = m.nextID
	m.nextID++
	m.inserted = append(m.inserted, expense)
	return expense, nil
}

type mockPurchases struct {
	records []ledger.MonetaryRecord
}

func (m *mockPurchases) SnapshotPurchases(ctx context.Context, from, to time.Time) ([]ledger.MonetaryRecord, error) {
	return m.records, nil
}

type mockHR struct {
	employees []ledger.Employee
	advances  []ledger.SalaryAdvance
	leaves    []ledger.LeaveRecord
}

func (m *mockHR) PayrollSnapshot(ctx context.Context, monthStart, monthEnd time.Time) ([]ledger.Employee, []ledger.SalaryAdvance, []ledger.LeaveRecord, error) {
	return m.employees, m.advances, m.leaves, nil
}

type mockCatalog struct {
	prices map[int64]float64
}

func (m *mockCatalog) BuyPrices(ctx context.Context, ids []int64) (map[int64]float64, error) {
	out := make(map[int64]float64)
	for _, id := range ids {
		if price, ok := m.prices[id]; ok {
			out[id] = price
		}
	}
	return out, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func f64(v float64) *float64 { return &v }

func newTestService(t *testing.T, sales *mockSales, expenseSource *mockExpenses, purchases *mockPurchases, hr *mockHR, catalog *mockCatalog, now time.Time) *Service {
	t.Helper()
	return NewService(ServiceParams{
		Logger:          slog.Default(),
		Sales:           sales,
		Expenses:        expenseSource,
		Purchases:       purchases,
		HR:              hr,
		Catalog:         catalog,
		Cache:           nil,
		LeaveBonus:      20000,
		PayrollCategory: "Payroll",
		Now:             func() time.Time { return now },
	})
}

func TestMonthlyReportsSortedNewestFirst(t *testing.T) {
	sales := &mockSales{sales: []ledger.Sale{
		{ID: 1, Date: date(2024, 1, 10), Status: ledger.SaleStatusCompleted, Total: 100,
			Items: []ledger.SaleItem{{ProductID: 1, Quantity: 2, SellPrice: 50, COGS: f64(40)}}},
		{ID: 2, Date: date(2024, 2, 5), Status: ledger.SaleStatusCompleted, Total: 200,
			Items: []ledger.SaleItem{{ProductID: 2, Quantity: 4, SellPrice: 50}}},
		{ID: 3, Date: date(2024, 2, 6), Status: ledger.SaleStatusVoided, Total: 999},
	}}
	expenseSource := newMockExpenses()
	expenseSource.records = []ledger.Expense{{ID: 1, Date: date(2024, 1, 20), Amount: 30, CategoryID: 1}}
	catalog := &mockCatalog{prices: map[int64]float64{2: 10}}

	svc := newTestService(t, sales, expenseSource, &mockPurchases{}, &mockHR{}, catalog, date(2024, 3, 1))
	reports, err := svc.MonthlyReports(context.Background(), ledger.RealizedOnly)
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, "2024-02", reports[0].Month, "newest month first")
	assert.Equal(t, "2024-01", reports[1].Month)

	assert.Equal(t, 100.0, reports[1].Revenue)
	assert.Equal(t, 40.0, reports[1].COGS, "precomputed item cost used verbatim")
	assert.Equal(t, 30.0, reports[1].Expenses)
	assert.Equal(t, 30.0, reports[1].NetProfit)

	assert.Equal(t, 40.0, reports[0].COGS, "fallback cost is buy price times quantity")
}

func TestMonthlyReportsCountsCOGSMisses(t *testing.T) {
	sales := &mockSales{sales: []ledger.Sale{
		{ID: 1, Date: date(2024, 1, 10), Status: ledger.SaleStatusCompleted, Total: 100,
			Items: []ledger.SaleItem{{ProductID: 77, Quantity: 1, SellPrice: 100}}},
	}}
	var missed []int64
	svc := NewService(ServiceParams{
		Logger:          slog.Default(),
		Sales:           sales,
		Expenses:        newMockExpenses(),
		Purchases:       &mockPurchases{},
		HR:              &mockHR{},
		Catalog:         &mockCatalog{prices: map[int64]float64{}},
		LeaveBonus:      20000,
		PayrollCategory: "Payroll",
		OnCOGSMiss:      func(id int64) { missed = append(missed, id) },
		Now:             func() time.Time { return date(2024, 2, 1) },
	})

	reports, err := svc.MonthlyReports(context.Background(), ledger.RealizedOnly)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 0.0, reports[0].COGS, "missing cost contributes zero, not an error")
	assert.Equal(t, []int64{77}, missed)
}

func TestDashboardTodayFigures(t *testing.T) {
	today := date(2024, 4, 15)
	sales := &mockSales{sales: []ledger.Sale{
		{ID: 1, Date: today.Add(10 * time.Hour), Status: ledger.SaleStatusCompleted, Total: 150},
		{ID: 2, Date: today.AddDate(0, 0, -1), Status: ledger.SaleStatusCompleted, Total: 100},
		{ID: 3, Date: today, Status: ledger.SaleStatusQuotation, Total: 999},
	}}
	svc := newTestService(t, sales, newMockExpenses(), &mockPurchases{}, &mockHR{}, &mockCatalog{}, today)

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 150.0, dashboard.TodayRevenue, "quotations never count as revenue")
	assert.Equal(t, "Rp 150,00", dashboard.TodayRevenueDisplay)
	assert.Equal(t, 50.0, dashboard.TodayChangePct)
	assert.Equal(t, 250.0, dashboard.MonthToDate.Revenue)
	assert.Equal(t, 100.0, dashboard.MonthChangePct, "no baseline month, positive current")
	require.Len(t, dashboard.RevenueLast30Days, 30)
	assert.Equal(t, 150.0, dashboard.RevenueLast30Days[29].Total)
	assert.Equal(t, 100.0, dashboard.RevenueLast30Days[28].Total)
	require.Len(t, dashboard.Last12Months, 12)
}

func TestCashflowNetsInAgainstOut(t *testing.T) {
	today := date(2024, 4, 15)
	sales := &mockSales{sales: []ledger.Sale{
		{ID: 1, Date: date(2024, 4, 2), Status: ledger.SaleStatusCompleted, Total: 500},
	}}
	expenseSource := newMockExpenses()
	expenseSource.records = []ledger.Expense{
		{ID: 1, Date: date(2024, 4, 3), Amount: 120, CategoryID: 1},
		{ID: 2, Date: date(2024, 1, 10), Amount: 60, CategoryID: 1},
	}
	purchases := &mockPurchases{records: []ledger.MonetaryRecord{{Date: date(2024, 4, 4), Amount: 80}}}

	svc := newTestService(t, sales, expenseSource, purchases, &mockHR{}, &mockCatalog{}, today)
	points, err := svc.Cashflow(context.Background(), ledger.GranularityMonth)
	require.NoError(t, err)

	require.Len(t, points, 2, "only buckets with data appear")
	assert.Equal(t, "2024-01", points[0].Key)
	assert.Equal(t, -60.0, points[0].Net)
	current := points[1]
	assert.Equal(t, "2024-04", current.Key)
	assert.Equal(t, 500.0, current.In)
	assert.Equal(t, 200.0, current.Out)
	assert.Equal(t, 300.0, current.Net)
}

func TestFinalizePayrollPostsOnceThenConflicts(t *testing.T) {
	today := date(2024, 5, 1)
	expenseSource := newMockExpenses()
	expenseSource.categories["Payroll"] = expenses.Category{ID: 9, Name: "Payroll"}
	hr := &mockHR{
		employees: []ledger.Employee{{ID: 1, Name: "Budi", BaseSalary: 3000000}},
		advances:  []ledger.SalaryAdvance{{ID: 1, EmployeeID: 1, Date: date(2024, 4, 10), Amount: 500000}},
	}

	svc := newTestService(t, &mockSales{}, expenseSource, &mockPurchases{}, hr, &mockCatalog{}, today)
	run, err := svc.FinalizePayroll(context.Background(), 1, "2024-04")
	require.NoError(t, err)

	assert.Equal(t, 2520000.0, run.Posted.Amount, "base minus advance plus attendance bonus")
	assert.Equal(t, "Monthly Payroll for April 2024", run.Posted.Description)
	assert.Equal(t, date(2024, 4, 30), run.Posted.Date, "posted on the last day of the month")
	require.Len(t, expenseSource.inserted, 1)
	assert.Equal(t, int64(9), expenseSource.inserted[0].CategoryID)

	_, err = svc.FinalizePayroll(context.Background(), 1, "2024-04")
	assert.ErrorIs(t, err, ledger.ErrPayrollAlreadyPosted)
	require.Len(t, expenseSource.inserted, 1, "conflict must not post twice")
}

func TestFinalizePayrollMissingCategory(t *testing.T) {
	svc := newTestService(t, &mockSales{}, newMockExpenses(), &mockPurchases{}, &mockHR{
		employees: []ledger.Employee{{ID: 1, Name: "Budi", BaseSalary: 3000000}},
	}, &mockCatalog{}, date(2024, 5, 1))

	_, err := svc.FinalizePayroll(context.Background(), 1, "2024-04")
	assert.ErrorIs(t, err, ledger.ErrPayrollCategoryMissing)
}

func TestFinalizePayrollRejectsBadMonth(t *testing.T) {
	svc := newTestService(t, &mockSales{}, newMockExpenses(), &mockPurchases{}, &mockHR{}, &mockCatalog{}, date(2024, 5, 1))
	_, err := svc.FinalizePayroll(context.Background(), 1, "April 2024")
	assert.ErrorIs(t, err, shared.ErrInvalidMonth)
}

func TestAffordabilityWithExplicitForecast(t *testing.T) {
	svc := newTestService(t, &mockSales{}, newMockExpenses(), &mockPurchases{}, &mockHR{}, &mockCatalog{}, date(2024, 5, 1))

	projection, err := svc.Affordability(context.Background(), AffordabilityRequest{
		CurrentBalance:    1000000,
		NewMonthlyExpense: 600000,
		Months:            3,
		Forecast:          []float64{500000, 100000, 500000},
	})
	require.NoError(t, err)

	assert.False(t, projection.Affordable, "one negative month rejects the expense")
	require.Len(t, projection.Entries, 3)
	assert.Equal(t, 900000.0, projection.Entries[0].Balance)
	assert.Equal(t, 400000.0, projection.Entries[1].Balance)
	assert.True(t, projection.Entries[2].Balance < 0 == projection.Entries[2].Negative)
}

func TestAffordabilityDerivesForecastFromHistory(t *testing.T) {
	today := date(2024, 5, 1)
	sales := &mockSales{sales: []ledger.Sale{
		{ID: 1, Date: date(2024, 3, 10), Status: ledger.SaleStatusCompleted, Total: 400000},
		{ID: 2, Date: date(2024, 4, 10), Status: ledger.SaleStatusCompleted, Total: 400000},
	}}
	svc := newTestService(t, sales, newMockExpenses(), &mockPurchases{}, &mockHR{}, &mockCatalog{}, today)

	projection, err := svc.Affordability(context.Background(), AffordabilityRequest{
		CurrentBalance:    100000,
		NewMonthlyExpense: 50000,
		Months:            2,
	})
	require.NoError(t, err)
	require.Len(t, projection.Entries, 2)
}
