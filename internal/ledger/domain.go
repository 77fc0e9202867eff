// Package ledger holds the pure financial calculation engine: period
// aggregation, profit reports, monthly payroll, and affordability
// projections. Nothing here performs I/O or touches shared state; all
// functions consume value snapshots and return derived records.
package ledger

import "time"

// SaleStatus enumerates document states a sale can be in.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusVoided    SaleStatus = "VOIDED"
	SaleStatusQuotation SaleStatus = "QUOTATION"
	SaleStatusInvoice   SaleStatus = "INVOICE"
)

// MonetaryRecord is the minimal dated-amount shape shared by sales totals,
// expenses, and purchase totals.
type MonetaryRecord struct {
	Date   time.Time
	Amount float64
}

// SaleItem is a single line on a sale document. COGS, when present, is the
// precomputed cost captured at sale time; when nil the calculator falls back
// to the product catalog's buy price.
type SaleItem struct {
	ProductID int64
	Quantity  float64
	SellPrice float64
	COGS      *float64
}

// Sale is a sale document snapshot.
type Sale struct {
	ID     int64
	Date   time.Time
	Total  float64
	Status SaleStatus
	Items  []SaleItem
}

// Expense is an expense record snapshot.
type Expense struct {
	ID         int64
	Date       time.Time
	Amount     float64
	CategoryID int64
}

// Employee carries the payroll-relevant slice of an employee record.
type Employee struct {
	ID         int64
	Name       string
	BaseSalary float64
}

// SalaryAdvance reduces the employee's final salary for the month
// containing Date.
type SalaryAdvance struct {
	ID         int64
	EmployeeID int64
	Date       time.Time
	Amount     float64
}

// LeaveRecord marks one day of leave. Any leave in a month withholds that
// month's attendance bonus.
type LeaveRecord struct {
	ID         int64
	EmployeeID int64
	Date       time.Time
}

// PayrollResult is the derived per-employee payroll line for one month.
// FinalSalary is deliberately not floored at zero: advances exceeding base
// salary plus bonus must be visible to the caller.
type PayrollResult struct {
	EmployeeID    int64   `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	BaseSalary    float64 `json:"base_salary"`
	TotalAdvance  float64 `json:"total_advance"`
	HasTakenLeave bool    `json:"has_taken_leave"`
	Bonus         float64 `json:"bonus"`
	FinalSalary   float64 `json:"final_salary"`
}

// MonthlyFinancialReport aggregates one calendar month of trading.
type MonthlyFinancialReport struct {
	Month        string  `json:"month"`
	Revenue      float64 `json:"revenue"`
	COGS         float64 `json:"cogs"`
	GrossProfit  float64 `json:"gross_profit"`
	Expenses     float64 `json:"expenses"`
	NetProfit    float64 `json:"net_profit"`
	NetProfitPct float64 `json:"net_profit_pct"`
}

// MonthKey formats t as a YYYY-MM bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DayKey formats t as a YYYY-MM-DD bucket key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
