package financehttp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kasbook/kasbook/internal/finance"
	"github.com/kasbook/kasbook/internal/finance/export"
	"github.com/kasbook/kasbook/internal/ledger"
	"github.com/kasbook/kasbook/internal/shared"
)

// Handler wires HTTP endpoints for financial reports, payroll, and
// affordability checks.
type Handler struct {
	logger    *slog.Logger
	service   *finance.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *finance.Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("finance dashboard", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) monthlyReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.MonthlyReports(r.Context(), filterMode(r))
	if err != nil {
		h.logger.Error("monthly reports", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *Handler) exportMonthlyReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.MonthlyReports(r.Context(), filterMode(r))
	if err != nil {
		h.logger.Error("export monthly reports", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="monthly-reports.csv"`)
	if err := export.WriteMonthlyReportsCSV(w, reports); err != nil {
		h.logger.Error("write monthly csv", slog.Any("error", err))
	}
}

func (h *Handler) cashflow(w http.ResponseWriter, r *http.Request) {
	granularity, ok := cashflowParams(w, r)
	if !ok {
		return
	}
	points, err := h.service.Cashflow(r.Context(), granularity)
	if err != nil {
		h.logger.Error("cashflow", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"cashflow": points})
}

func (h *Handler) exportCashflow(w http.ResponseWriter, r *http.Request) {
	granularity, ok := cashflowParams(w, r)
	if !ok {
		return
	}
	points, err := h.service.Cashflow(r.Context(), granularity)
	if err != nil {
		h.logger.Error("export cashflow", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="cashflow.csv"`)
	if err := export.WriteCashflowCSV(w, points); err != nil {
		h.logger.Error("write cashflow csv", slog.Any("error", err))
	}
}

type payrollRequest struct {
	Month string `json:"month" validate:"required"`
}

func (h *Handler) runPayroll(w http.ResponseWriter, r *http.Request) {
	var req payrollRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	results, err := h.service.RunPayroll(r.Context(), req.Month)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidMonth) {
			shared.RespondError(w, http.StatusBadRequest, shared.ErrInvalidMonth.Error())
			return
		}
		h.logger.Error("run payroll", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"month": req.Month, "results": results})
}

func (h *Handler) finalizePayroll(w http.ResponseWriter, r *http.Request) {
	var req payrollRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	userID := shared.SessionFromContext(r.Context()).User()
	run, err := h.service.FinalizePayroll(r.Context(), userID, req.Month)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidMonth):
			shared.RespondError(w, http.StatusBadRequest, shared.ErrInvalidMonth.Error())
		case errors.Is(err, ledger.ErrPayrollAlreadyPosted):
			shared.RespondError(w, http.StatusConflict, ledger.ErrPayrollAlreadyPosted.Error())
		case errors.Is(err, ledger.ErrNothingToPost):
			shared.RespondError(w, http.StatusUnprocessableEntity, ledger.ErrNothingToPost.Error())
		case errors.Is(err, ledger.ErrPayrollCategoryMissing):
			shared.RespondError(w, http.StatusUnprocessableEntity, ledger.ErrPayrollCategoryMissing.Error())
		default:
			h.logger.Error("finalize payroll", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}
	shared.RespondJSON(w, http.StatusCreated, run)
}

func (h *Handler) affordability(w http.ResponseWriter, r *http.Request) {
	var req finance.AffordabilityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	projection, err := h.service.Affordability(r.Context(), req)
	if err != nil {
		h.logger.Error("affordability", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, projection)
}

func filterMode(r *http.Request) ledger.SaleFilterMode {
	if r.URL.Query().Get("mode") == "all" {
		return ledger.AllExceptVoidAndQuote
	}
	return ledger.RealizedOnly
}

func cashflowParams(w http.ResponseWriter, r *http.Request) (ledger.Granularity, bool) {
	granularity := ledger.GranularityMonth
	switch r.URL.Query().Get("granularity") {
	case "", "month":
	case "day":
		granularity = ledger.GranularityDay
	default:
		shared.RespondError(w, http.StatusBadRequest, "granularity must be day or month")
		return granularity, false
	}
	return granularity, true
}
