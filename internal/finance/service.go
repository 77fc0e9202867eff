package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kasbook/kasbook/internal/expenses"
	"github.com/kasbook/kasbook/internal/forecast"
	"github.com/kasbook/kasbook/internal/ledger"
	"github.com/kasbook/kasbook/internal/shared"
)

// SalesSource loads sale snapshots for the calculation engine.
type SalesSource interface {
	SnapshotSales(ctx context.Context, from, to time.Time) ([]ledger.Sale, error)
}

// ExpenseSource loads expense snapshots and receives payroll postings.
type ExpenseSource interface {
	SnapshotExpenses(ctx context.Context, from, to time.Time) ([]ledger.Expense, error)
	CategoryByName(ctx context.Context, name string) (expenses.Category, error)
	ExistsInMonth(ctx context.Context, categoryID int64, monthStart, monthEnd time.Time) (bool, error)
	Insert(ctx context.Context, expense expenses.Expense) (expenses.Expense, error)
}

// PurchaseSource loads purchase totals for cash-out aggregation.
type PurchaseSource interface {
	SnapshotPurchases(ctx context.Context, from, to time.Time) ([]ledger.MonetaryRecord, error)
}

// PayrollSource loads the payroll snapshot for one month.
type PayrollSource interface {
	PayrollSnapshot(ctx context.Context, monthStart, monthEnd time.Time) ([]ledger.Employee, []ledger.SalaryAdvance, []ledger.LeaveRecord, error)
}

// CostSource resolves current catalog buy prices for COGS fallback.
type CostSource interface {
	BuyPrices(ctx context.Context, ids []int64) (map[int64]float64, error)
}

// ServiceParams aggregates the finance service dependencies.
type ServiceParams struct {
	Logger          *slog.Logger
	Sales           SalesSource
	Expenses        ExpenseSource
	Purchases       PurchaseSource
	HR              PayrollSource
	Catalog         CostSource
	Cache           *Cache
	Audit           *shared.AuditLogger
	LeaveBonus      float64
	PayrollCategory string
	// OnCOGSMiss is invoked once per sale item whose product cost could not
	// be resolved. Optional.
	OnCOGSMiss func(productID int64)
	// Now allows tests to pin the clock. Defaults to time.Now.
	Now func() time.Time
}

// Service derives financial reports, payroll runs, and affordability
// projections from the transactional modules.
type Service struct {
	logger          *slog.Logger
	sales           SalesSource
	expenses        ExpenseSource
	purchases       PurchaseSource
	hr              PayrollSource
	catalog         CostSource
	cache           *Cache
	audit           *shared.AuditLogger
	leaveBonus      float64
	payrollCategory string
	onCOGSMiss      func(int64)
	now             func() time.Time
}

// NewService constructs a finance service.
func NewService(params ServiceParams) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logger:          params.Logger,
		sales:           params.Sales,
		expenses:        params.Expenses,
		purchases:       params.Purchases,
		hr:              params.HR,
		catalog:         params.Catalog,
		cache:           params.Cache,
		audit:           params.Audit,
		leaveBonus:      params.LeaveBonus,
		payrollCategory: params.PayrollCategory,
		onCOGSMiss:      params.OnCOGSMiss,
		now:             now,
	}
}

// ReportCache exposes the cache for construction-time wiring of write-side
// bump hooks.
func (s *Service) ReportCache() *Cache {
	return s.cache
}

// calculator builds a profit calculator whose cost lookup is a snapshot of
// current buy prices for every product the sales reference without a
// captured cost.
func (s *Service) calculator(ctx context.Context, sales []ledger.Sale) (ledger.ProfitCalculator, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, sale := range sales {
		for _, item := range sale.Items {
			if item.COGS == nil && !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}
	calc := ledger.ProfitCalculator{OnLookupMiss: s.onCOGSMiss}
	if len(ids) == 0 || s.catalog == nil {
		return calc, nil
	}
	prices, err := s.catalog.BuyPrices(ctx, ids)
	if err != nil {
		return ledger.ProfitCalculator{}, fmt.Errorf("load buy prices: %w", err)
	}
	calc.Lookup = func(productID int64) (float64, bool) {
		price, ok := prices[productID]
		return price, ok
	}
	return calc, nil
}

// MonthlyReports returns per-month financial reports, newest month first.
func (s *Service) MonthlyReports(ctx context.Context, mode ledger.SaleFilterMode) ([]ledger.MonthlyFinancialReport, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		sales, err := s.sales.SnapshotSales(ctx, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		expenseRecords, err := s.expenses.SnapshotExpenses(ctx, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		calc, err := s.calculator(ctx, sales)
		if err != nil {
			return nil, err
		}
		byMonth := calc.MonthlyReports(sales, expenseRecords, mode)
		reports := make([]ledger.MonthlyFinancialReport, 0, len(byMonth))
		for _, report := range byMonth {
			reports = append(reports, report)
		}
		sort.Slice(reports, func(i, j int) bool { return reports[i].Month > reports[j].Month })
		return reports, nil
	}

	key, err := s.cache.BuildKey(ctx, keyMonthlyReports(modeToken(mode)))
	if err != nil {
		return nil, err
	}
	var reports []ledger.MonthlyFinancialReport
	if err := s.cache.FetchJSON(ctx, key, &reports, loader); err != nil {
		return nil, err
	}
	return reports, nil
}

// Dashboard collects the owner's at-a-glance figures.
type Dashboard struct {
	TodayRevenue        float64                       `json:"today_revenue"`
	TodayRevenueDisplay string                        `json:"today_revenue_display"`
	TodayChangePct      float64                       `json:"today_change_pct"`
	MonthToDate         ledger.MonthlyFinancialReport `json:"month_to_date"`
	MonthChangePct      float64                       `json:"month_change_pct"`
	RevenueLast30Days   []ledger.BucketSum            `json:"revenue_last_30_days"`
	Last12Months        []CashflowPoint               `json:"last_12_months"`
}

// CashflowPoint is one bucket of money in versus money out.
type CashflowPoint struct {
	Key string  `json:"key"`
	In  float64 `json:"in"`
	Out float64 `json:"out"`
	Net float64 `json:"net"`
}

// Dashboard computes the KPI snapshot for today. The three snapshot loads run
// concurrently; results are cached per day.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	today := s.now()
	loader := func(ctx context.Context) (interface{}, error) {
		var (
			sales           []ledger.Sale
			expenseRecords  []ledger.Expense
			purchaseRecords []ledger.MonetaryRecord
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			sales, err = s.sales.SnapshotSales(gctx, time.Time{}, time.Time{})
			return err
		})
		g.Go(func() error {
			var err error
			expenseRecords, err = s.expenses.SnapshotExpenses(gctx, time.Time{}, time.Time{})
			return err
		})
		g.Go(func() error {
			var err error
			purchaseRecords, err = s.purchases.SnapshotPurchases(gctx, time.Time{}, time.Time{})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		calc, err := s.calculator(ctx, sales)
		if err != nil {
			return nil, err
		}

		realized := salesToRecords(sales, ledger.RealizedOnly)
		dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
		todayRevenue := ledger.SumInRange(realized, dayStart, dayStart.AddDate(0, 0, 1))
		yesterdayRevenue := ledger.SumInRange(realized, dayStart.AddDate(0, 0, -1), dayStart)

		monthKey := ledger.MonthKey(today)
		reports := calc.MonthlyReports(sales, expenseRecords, ledger.AllExceptVoidAndQuote)
		monthToDate := reports[monthKey]
		monthToDate.Month = monthKey
		prevMonthStart := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		lastMonth := reports[ledger.MonthKey(prevMonthStart)]

		out := append(expensesToRecords(expenseRecords), purchaseRecords...)
		return Dashboard{
			TodayRevenue:        todayRevenue,
			TodayRevenueDisplay: shared.FormatRupiah(todayRevenue),
			TodayChangePct:      ledger.ChangePercent(todayRevenue, yesterdayRevenue),
			MonthToDate:         monthToDate,
			MonthChangePct:      ledger.ChangePercent(monthToDate.Revenue, lastMonth.Revenue),
			RevenueLast30Days:   ledger.SumTrailing(realized, ledger.GranularityDay, 30, today),
			Last12Months:        mergeCashflow(realized, out, ledger.GranularityMonth, 12, today),
		}, nil
	}

	key, err := s.cache.BuildKey(ctx, keyDashboard(ledger.DayKey(today)))
	if err != nil {
		return Dashboard{}, err
	}
	var dashboard Dashboard
	if err := s.cache.FetchJSON(ctx, key, &dashboard, loader); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}

// Cashflow groups cash in, out, and net per bucket. Only buckets with at
// least one record appear; trailing zero-seeded series belong to the
// dashboard, not this report.
func (s *Service) Cashflow(ctx context.Context, g ledger.Granularity) ([]CashflowPoint, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		in, out, err := s.loadFlows(ctx)
		if err != nil {
			return nil, err
		}
		return groupCashflow(in, out, g), nil
	}

	key, err := s.cache.BuildKey(ctx, keyCashflow(string(g)))
	if err != nil {
		return nil, err
	}
	var points []CashflowPoint
	if err := s.cache.FetchJSON(ctx, key, &points, loader); err != nil {
		return nil, err
	}
	return points, nil
}

// loadFlows snapshots realized sales as cash in and expenses plus purchases
// as cash out.
func (s *Service) loadFlows(ctx context.Context) (in, out []ledger.MonetaryRecord, err error) {
	sales, err := s.sales.SnapshotSales(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	expenseRecords, err := s.expenses.SnapshotExpenses(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	purchaseRecords, err := s.purchases.SnapshotPurchases(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	in = salesToRecords(sales, ledger.RealizedOnly)
	out = append(expensesToRecords(expenseRecords), purchaseRecords...)
	return in, out, nil
}

// RunPayroll computes the payroll preview for a YYYY-MM month without posting
// anything.
func (s *Service) RunPayroll(ctx context.Context, month string) ([]ledger.PayrollResult, error) {
	monthStart, monthEnd, err := shared.MonthRange(month)
	if err != nil {
		return nil, err
	}
	employees, advances, leaves, err := s.hr.PayrollSnapshot(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("payroll snapshot: %w", err)
	}
	return ledger.ComputeMonthlyPayroll(employees, advances, leaves, month, s.leaveBonus), nil
}

// PayrollRun is the outcome of a finalized payroll month.
type PayrollRun struct {
	Month     string                 `json:"month"`
	Results   []ledger.PayrollResult `json:"results"`
	Posted    ledger.PostedExpense   `json:"posted"`
	ExpenseID int64                  `json:"expense_id"`
}

// FinalizePayroll computes the month's payroll and posts the single summary
// expense into the payroll category. A month can only be finalized once.
func (s *Service) FinalizePayroll(ctx context.Context, userID int64, month string) (PayrollRun, error) {
	monthStart, monthEnd, err := shared.MonthRange(month)
	if err != nil {
		return PayrollRun{}, err
	}
	category, err := s.expenses.CategoryByName(ctx, s.payrollCategory)
	if err != nil {
		if errors.Is(err, expenses.ErrCategoryNotFound) {
			return PayrollRun{}, ledger.ErrPayrollCategoryMissing
		}
		return PayrollRun{}, fmt.Errorf("resolve payroll category: %w", err)
	}

	employees, advances, leaves, err := s.hr.PayrollSnapshot(ctx, monthStart, monthEnd)
	if err != nil {
		return PayrollRun{}, fmt.Errorf("payroll snapshot: %w", err)
	}
	results := ledger.ComputeMonthlyPayroll(employees, advances, leaves, month, s.leaveBonus)

	var guardErr error
	alreadyPosted := func(string) bool {
		exists, err := s.expenses.ExistsInMonth(ctx, category.ID, monthStart, monthEnd)
		if err != nil {
			guardErr = err
			return true
		}
		return exists
	}
	posted, err := ledger.FinalizePayroll(results, month, alreadyPosted)
	if guardErr != nil {
		return PayrollRun{}, fmt.Errorf("payroll guard: %w", guardErr)
	}
	if err != nil {
		return PayrollRun{}, err
	}

	created, err := s.expenses.Insert(ctx, expenses.Expense{
		CategoryID:  category.ID,
		Date:        posted.Date,
		Description: posted.Description,
		Amount:      posted.Amount,
		CreatedBy:   userID,
	})
	if err != nil {
		if shared.UniqueViolation(err) {
			return PayrollRun{}, ledger.ErrPayrollAlreadyPosted
		}
		return PayrollRun{}, fmt.Errorf("post payroll expense: %w", err)
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  userID,
		Action:   "payroll.finalize",
		Entity:   "expense",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"month": month, "amount": posted.Amount, "employees": len(results)},
	}); err != nil {
		s.logger.Warn("record payroll audit", "error", err)
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", "error", err)
	}
	return PayrollRun{Month: month, Results: results, Posted: posted, ExpenseID: created.ID}, nil
}

// AffordabilityRequest asks whether a recurring monthly expense fits the
// projected cash position. An empty forecast is derived from the trailing
// twelve months of net cash flow.
type AffordabilityRequest struct {
	CurrentBalance    float64   `json:"current_balance"`
	NewMonthlyExpense float64   `json:"new_monthly_expense" validate:"required,gt=0"`
	Months            int       `json:"months" validate:"gte=0,lte=60"`
	Forecast          []float64 `json:"forecast,omitempty"`
}

// Affordability rolls the balance forward and renders a strict verdict: any
// projected negative month rejects the expense.
func (s *Service) Affordability(ctx context.Context, req AffordabilityRequest) (ledger.Projection, error) {
	months := req.Months
	if months <= 0 {
		months = 6
	}
	flows := req.Forecast
	if len(flows) == 0 {
		history, err := s.netCashflowHistory(ctx, 12)
		if err != nil {
			return ledger.Projection{}, err
		}
		flows = forecast.LinearTrend(history, months)
	}
	return ledger.Project(req.CurrentBalance, flows, req.NewMonthlyExpense, months), nil
}

// netCashflowHistory yields a contiguous zero-seeded trailing series so the
// trend fit sees calendar gaps as zero months.
func (s *Service) netCashflowHistory(ctx context.Context, months int) ([]float64, error) {
	in, out, err := s.loadFlows(ctx)
	if err != nil {
		return nil, err
	}
	points := mergeCashflow(in, out, ledger.GranularityMonth, months, s.now())
	history := make([]float64, 0, len(points))
	for _, point := range points {
		history = append(history, point.Net)
	}
	return history, nil
}

func salesToRecords(sales []ledger.Sale, mode ledger.SaleFilterMode) []ledger.MonetaryRecord {
	records := make([]ledger.MonetaryRecord, 0, len(sales))
	for _, sale := range sales {
		if !mode.Includes(sale.Status) {
			continue
		}
		records = append(records, ledger.MonetaryRecord{Date: sale.Date, Amount: sale.Total})
	}
	return records
}

func expensesToRecords(expenseRecords []ledger.Expense) []ledger.MonetaryRecord {
	records := make([]ledger.MonetaryRecord, 0, len(expenseRecords))
	for _, expense := range expenseRecords {
		records = append(records, ledger.MonetaryRecord{Date: expense.Date, Amount: expense.Amount})
	}
	return records
}

func groupCashflow(in, out []ledger.MonetaryRecord, g ledger.Granularity) []CashflowPoint {
	inBuckets := ledger.SumByBucket(in, g)
	outBuckets := ledger.SumByBucket(out, g)
	keys := make([]string, 0, len(inBuckets)+len(outBuckets))
	for key := range inBuckets {
		keys = append(keys, key)
	}
	for key := range outBuckets {
		if _, ok := inBuckets[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	points := make([]CashflowPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, CashflowPoint{
			Key: key,
			In:  inBuckets[key],
			Out: outBuckets[key],
			Net: inBuckets[key] - outBuckets[key],
		})
	}
	return points
}

func mergeCashflow(in, out []ledger.MonetaryRecord, g ledger.Granularity, n int, today time.Time) []CashflowPoint {
	inBuckets := ledger.SumTrailing(in, g, n, today)
	outBuckets := ledger.SumTrailing(out, g, n, today)
	points := make([]CashflowPoint, len(inBuckets))
	for i, bucket := range inBuckets {
		points[i] = CashflowPoint{
			Key: bucket.Key,
			In:  bucket.Total,
			Out: outBuckets[i].Total,
			Net: bucket.Total - outBuckets[i].Total,
		}
	}
	return points
}

func modeToken(mode ledger.SaleFilterMode) string {
	if mode == ledger.AllExceptVoidAndQuote {
		return "all"
	}
	return "realized"
}
