package ledger

import (
	"math"
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }

func TestMonthlyReportsScenario(t *testing.T) {
	sales := []Sale{
		{Date: date(2024, 1, 5), Total: 100, Status: SaleStatusCompleted},
		{Date: date(2024, 1, 20), Total: 50, Status: SaleStatusVoided},
	}
	expenses := []Expense{
		{Date: date(2024, 1, 10), Amount: 30},
	}
	calc := ProfitCalculator{} // no catalog: zero COGS
	reports := calc.MonthlyReports(sales, expenses, RealizedOnly)
	report, ok := reports["2024-01"]
	if !ok {
		t.Fatalf("missing 2024-01 report: %v", reports)
	}
	if report.Revenue != 100 {
		t.Fatalf("revenue = %.2f, want 100 (voided sale must not count)", report.Revenue)
	}
	if report.COGS != 0 {
		t.Fatalf("cogs = %.2f, want 0", report.COGS)
	}
	if report.Expenses != 30 {
		t.Fatalf("expenses = %.2f, want 30", report.Expenses)
	}
	if report.NetProfit != 70 {
		t.Fatalf("net profit = %.2f, want 70", report.NetProfit)
	}
	if report.NetProfitPct != 70 {
		t.Fatalf("net profit pct = %.2f, want 70", report.NetProfitPct)
	}
}

func TestMonthlyReportsProfitInvariants(t *testing.T) {
	sales := []Sale{
		{
			Date: date(2024, 3, 2), Total: 500, Status: SaleStatusCompleted,
			Items: []SaleItem{
				{ProductID: 1, Quantity: 2, SellPrice: 100, COGS: f64(120)},
				{ProductID: 2, Quantity: 3, SellPrice: 100},
			},
		},
		{Date: date(2024, 3, 20), Total: 250, Status: SaleStatusCompleted},
	}
	lookup := func(productID int64) (float64, bool) {
		if productID == 2 {
			return 40, true
		}
		return 0, false
	}
	calc := ProfitCalculator{Lookup: lookup}
	reports := calc.MonthlyReports(sales, nil, RealizedOnly)
	report := reports["2024-03"]
	// 120 precomputed + 3*40 fallback
	if report.COGS != 240 {
		t.Fatalf("cogs = %.2f, want 240", report.COGS)
	}
	if report.GrossProfit != report.Revenue-report.COGS {
		t.Fatalf("gross profit invariant broken: %.2f != %.2f - %.2f", report.GrossProfit, report.Revenue, report.COGS)
	}
	if report.NetProfit != report.GrossProfit-report.Expenses {
		t.Fatalf("net profit invariant broken")
	}
}

func TestSaleCOGSLenientOnLookupMiss(t *testing.T) {
	var misses []int64
	calc := ProfitCalculator{
		Lookup:       func(int64) (float64, bool) { return 0, false },
		OnLookupMiss: func(productID int64) { misses = append(misses, productID) },
	}
	sale := Sale{
		Date: date(2024, 5, 1), Total: 90, Status: SaleStatusCompleted,
		Items: []SaleItem{
			{ProductID: 7, Quantity: 1, SellPrice: 30},
			{ProductID: 8, Quantity: 2, SellPrice: 30, COGS: f64(25)},
		},
	}
	if got := calc.SaleCOGS(sale); got != 25 {
		t.Fatalf("cogs = %.2f, want 25 (missed lookup contributes zero)", got)
	}
	if len(misses) != 1 || misses[0] != 7 {
		t.Fatalf("expected one recorded miss for product 7, got %v", misses)
	}
}

func TestSaleFilterModes(t *testing.T) {
	cases := []struct {
		status        SaleStatus
		realized      bool
		exceptVoidQuo bool
	}{
		{SaleStatusCompleted, true, true},
		{SaleStatusInvoice, false, true},
		{SaleStatusVoided, false, false},
		{SaleStatusQuotation, false, false},
	}
	for _, tc := range cases {
		if got := RealizedOnly.Includes(tc.status); got != tc.realized {
			t.Fatalf("RealizedOnly.Includes(%s) = %v, want %v", tc.status, got, tc.realized)
		}
		if got := AllExceptVoidAndQuote.Includes(tc.status); got != tc.exceptVoidQuo {
			t.Fatalf("AllExceptVoidAndQuote.Includes(%s) = %v, want %v", tc.status, got, tc.exceptVoidQuo)
		}
	}
}

func TestMonthlyReportsExpenseOnlyMonth(t *testing.T) {
	expenses := []Expense{{Date: date(2024, 7, 3), Amount: 45}}
	calc := ProfitCalculator{}
	reports := calc.MonthlyReports(nil, expenses, RealizedOnly)
	report := reports["2024-07"]
	if report.NetProfit != -45 {
		t.Fatalf("net profit = %.2f, want -45", report.NetProfit)
	}
	if report.NetProfitPct != 0 {
		t.Fatalf("net profit pct with zero revenue = %.2f, want 0", report.NetProfitPct)
	}
}

func TestChangePercent(t *testing.T) {
	cases := []struct {
		current, previous, want float64
	}{
		{150, 100, 50},
		{50, 100, -50},
		{100, 0, 100},
		{0, 0, 0},
		{-5, 0, 0},
		{0, 80, -100},
	}
	for _, tc := range cases {
		got := ChangePercent(tc.current, tc.previous)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ChangePercent(%.0f, %.0f) = %.2f, want %.2f", tc.current, tc.previous, got, tc.want)
		}
	}
}

func TestMonthlyReportsMapIsUnsortedButComplete(t *testing.T) {
	var sales []Sale
	for m := time.January; m <= time.December; m++ {
		sales = append(sales, Sale{Date: date(2024, m, 15), Total: float64(m), Status: SaleStatusCompleted})
	}
	calc := ProfitCalculator{}
	reports := calc.MonthlyReports(sales, nil, RealizedOnly)
	if len(reports) != 12 {
		t.Fatalf("expected 12 monthly reports, got %d", len(reports))
	}
}
