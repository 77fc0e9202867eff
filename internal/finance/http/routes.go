package financehttp

import "github.com/go-chi/chi/v5"

// MountRoutes registers the finance routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/reports/monthly", h.monthlyReports)
	r.Get("/reports/monthly/export", h.exportMonthlyReports)
	r.Get("/reports/cashflow", h.cashflow)
	r.Get("/reports/cashflow/export", h.exportCashflow)
	r.Post("/payroll/run", h.runPayroll)
	r.Post("/payroll/finalize", h.finalizePayroll)
	r.Post("/affordability", h.affordability)
}
