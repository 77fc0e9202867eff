package ledger

// ProjectionEntry is one month of a rolled-forward cash balance.
type ProjectionEntry struct {
	Month    int     `json:"month"`
	Balance  float64 `json:"balance"`
	Negative bool    `json:"negative"`
}

// Projection is the outcome of an affordability check.
type Projection struct {
	Affordable bool              `json:"affordable"`
	Entries    []ProjectionEntry `json:"entries"`
}

// Project rolls the cash balance forward month by month: each month adds the
// forecast net cash flow and subtracts the proposed new fixed expense. The
// verdict is strict: one negative month anywhere in the horizon makes the
// expense unaffordable, even when later months recover. A forecast shorter
// than the horizon contributes zero for the missing months.
//
// The forecast is opaque caller input; how it was produced (trend model,
// language model, manual entry) is outside this function's contract.
func Project(currentBalance float64, forecast []float64, newMonthlyExpense float64, months int) Projection {
	proj := Projection{Affordable: true, Entries: make([]ProjectionEntry, 0, max(months, 0))}
	balance := currentBalance
	for i := 0; i < months; i++ {
		var flow float64
		if i < len(forecast) {
			flow = forecast[i]
		}
		balance += flow - newMonthlyExpense
		entry := ProjectionEntry{Month: i + 1, Balance: balance, Negative: balance < 0}
		if entry.Negative {
			proj.Affordable = false
		}
		proj.Entries = append(proj.Entries, entry)
	}
	return proj
}
