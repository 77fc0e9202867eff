package ledger

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPayrollAlreadyPosted indicates payroll for the month was finalized before.
	ErrPayrollAlreadyPosted = errors.New("payroll already posted for month")
	// ErrNothingToPost indicates the computed payroll total is zero or negative.
	ErrNothingToPost = errors.New("no payroll amount to post")
	// ErrPayrollCategoryMissing indicates the payroll expense category could not
	// be resolved by the persistence side.
	ErrPayrollCategoryMissing = errors.New("payroll expense category missing")
)

// ComputeMonthlyPayroll derives each employee's final salary for the month
// (YYYY-MM): base salary minus the month's advances, plus the attendance
// bonus when no leave was taken. Advances and leaves referencing unknown
// employees are ignored; deleting an employee orphans those rows and the
// engine must not resurrect them. Results keep the input employee order.
func ComputeMonthlyPayroll(employees []Employee, advances []SalaryAdvance, leaves []LeaveRecord, month string, leaveBonus float64) []PayrollResult {
	advanceByEmployee := make(map[int64]float64)
	for _, adv := range advances {
		if MonthKey(adv.Date) == month {
			advanceByEmployee[adv.EmployeeID] += adv.Amount
		}
	}
	leaveTaken := make(map[int64]bool)
	for _, leave := range leaves {
		if MonthKey(leave.Date) == month {
			leaveTaken[leave.EmployeeID] = true
		}
	}

	results := make([]PayrollResult, 0, len(employees))
	for _, emp := range employees {
		res := PayrollResult{
			EmployeeID:    emp.ID,
			EmployeeName:  emp.Name,
			BaseSalary:    emp.BaseSalary,
			TotalAdvance:  advanceByEmployee[emp.ID],
			HasTakenLeave: leaveTaken[emp.ID],
		}
		if !res.HasTakenLeave {
			res.Bonus = leaveBonus
		}
		res.FinalSalary = res.BaseSalary - res.TotalAdvance + res.Bonus
		results = append(results, res)
	}
	return results
}

// PostedExpense is the single derived write payroll finalization produces:
// one expense record dated on the last day of the month.
type PostedExpense struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
}

// FinalizePayroll turns computed payroll results into the expense record to
// post. Finalization is once per month: when alreadyPosted reports the month
// as handled the call fails with ErrPayrollAlreadyPosted before anything
// else. A non-positive total is rejected with ErrNothingToPost rather than
// posted as a silent no-op.
func FinalizePayroll(results []PayrollResult, month string, alreadyPosted func(month string) bool) (PostedExpense, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return PostedExpense{}, fmt.Errorf("ledger: parse month %q: %w", month, err)
	}
	if alreadyPosted != nil && alreadyPosted(month) {
		return PostedExpense{}, ErrPayrollAlreadyPosted
	}
	var total float64
	for _, res := range results {
		total += res.FinalSalary
	}
	if total <= 0 {
		return PostedExpense{}, ErrNothingToPost
	}
	lastDay := start.AddDate(0, 1, -1)
	return PostedExpense{
		Date:        lastDay,
		Description: fmt.Sprintf("Monthly Payroll for %s", start.Format("January 2006")),
		Amount:      total,
	}, nil
}
