package ledger

// SaleFilterMode names which sale documents count toward a report. Both
// policies exist in the product: realized financial reports count only
// completed sales, while month-to-date dashboard figures also include open
// invoices and exclude just voided documents and quotations.
type SaleFilterMode int

const (
	// RealizedOnly counts COMPLETED sales.
	RealizedOnly SaleFilterMode = iota
	// AllExceptVoidAndQuote counts everything except VOIDED and QUOTATION.
	AllExceptVoidAndQuote
)

// Includes reports whether a sale with the given status counts under the mode.
func (m SaleFilterMode) Includes(status SaleStatus) bool {
	switch m {
	case AllExceptVoidAndQuote:
		return status != SaleStatusVoided && status != SaleStatusQuotation
	default:
		return status == SaleStatusCompleted
	}
}

// CostLookup resolves a product's buy price. The second return value reports
// whether the product was found in the catalog.
type CostLookup func(productID int64) (float64, bool)

// ProfitCalculator derives revenue, COGS, and profit figures from sale and
// expense snapshots. Lookup may be nil when no catalog is available; missing
// costs contribute zero COGS. That leniency is deliberate and inherited from
// the bookkeeping rules: an incomplete catalog understates COGS rather than
// failing the report. OnLookupMiss, when set, is invoked once per missed
// item so callers can count the gap.
type ProfitCalculator struct {
	Lookup       CostLookup
	OnLookupMiss func(productID int64)
}

// SaleCOGS computes the cost of goods sold for one sale. Items carrying a
// precomputed cost use it verbatim; the rest fall back to the catalog price
// times quantity.
func (c ProfitCalculator) SaleCOGS(sale Sale) float64 {
	var total float64
	for _, item := range sale.Items {
		if item.COGS != nil {
			total += *item.COGS
			continue
		}
		if c.Lookup != nil {
			if buyPrice, ok := c.Lookup(item.ProductID); ok {
				total += buyPrice * item.Quantity
				continue
			}
		}
		if c.OnLookupMiss != nil {
			c.OnLookupMiss(item.ProductID)
		}
	}
	return total
}

// MonthlyReports aggregates sales and expenses into per-month financial
// reports keyed by YYYY-MM. The mapping is unordered; display ordering is the
// caller's concern. Months that saw only expenses still get a report with
// zero revenue.
func (c ProfitCalculator) MonthlyReports(sales []Sale, expenses []Expense, mode SaleFilterMode) map[string]MonthlyFinancialReport {
	reports := make(map[string]MonthlyFinancialReport)
	for _, sale := range sales {
		if !mode.Includes(sale.Status) {
			continue
		}
		key := MonthKey(sale.Date)
		report := reports[key]
		report.Month = key
		report.Revenue += sale.Total
		report.COGS += c.SaleCOGS(sale)
		reports[key] = report
	}
	for _, expense := range expenses {
		key := MonthKey(expense.Date)
		report := reports[key]
		report.Month = key
		report.Expenses += expense.Amount
		reports[key] = report
	}
	for key, report := range reports {
		report.GrossProfit = report.Revenue - report.COGS
		report.NetProfit = report.GrossProfit - report.Expenses
		if report.Revenue > 0 {
			report.NetProfitPct = report.NetProfit / report.Revenue * 100
		}
		reports[key] = report
	}
	return reports
}

// ChangePercent computes the percentage change from previous to current.
// A zero baseline maps to 100 when anything was gained and 0 otherwise; the
// tie-break keeps "first day of trading" cards readable instead of dividing
// by zero.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
