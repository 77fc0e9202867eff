package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kasbook/kasbook/internal/finance"
	"github.com/kasbook/kasbook/internal/ledger"
)

// WriteMonthlyReportsCSV serialises monthly financial reports to CSV.
func WriteMonthlyReportsCSV(w io.Writer, reports []ledger.MonthlyFinancialReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Month", "Revenue", "COGS", "Gross Profit", "Expenses", "Net Profit", "Net Profit %"}); err != nil {
		return err
	}
	for _, report := range reports {
		if err := writer.Write([]string{
			report.Month,
			formatFloat(report.Revenue),
			formatFloat(report.COGS),
			formatFloat(report.GrossProfit),
			formatFloat(report.Expenses),
			formatFloat(report.NetProfit),
			formatFloat(report.NetProfitPct),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCashflowCSV emits cash movement buckets as CSV.
func WriteCashflowCSV(w io.Writer, points []finance.CashflowPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Period", "Cash In", "Cash Out", "Net"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Key,
			formatFloat(point.In),
			formatFloat(point.Out),
			formatFloat(point.Net),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
