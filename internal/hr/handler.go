package hr

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kasbook/kasbook/internal/shared"
)

// Handler wires HTTP endpoints for employee administration.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers HR routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/employees", h.listEmployees)
	r.Post("/employees", h.createEmployee)
	r.Get("/employees/{id}", h.getEmployee)
	r.Patch("/employees/{id}", h.updateEmployee)
	r.Get("/advances", h.listAdvances)
	r.Post("/advances", h.recordAdvance)
	r.Get("/leaves", h.listLeaves)
	r.Post("/leaves", h.recordLeave)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.ListEmployees(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"employees": employees})
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	employee, err := h.service.CreateEmployee(r.Context(), req)
	if err != nil {
		h.logger.Error("create employee", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusCreated, employee)
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	employee, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Error("get employee", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, employee)
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	var req UpdateEmployeeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	employee, err := h.service.UpdateEmployee(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Error("update employee", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, employee)
}

func (h *Handler) recordAdvance(w http.ResponseWriter, r *http.Request) {
	var req CreateAdvanceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	advance, err := h.service.RecordAdvance(r.Context(), req)
	if err != nil {
		h.respondEmployeeError(w, err, "record advance")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, advance)
}

func (h *Handler) recordLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	leave, err := h.service.RecordLeave(r.Context(), req)
	if err != nil {
		h.respondEmployeeError(w, err, "record leave")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, leave)
}

func (h *Handler) listAdvances(w http.ResponseWriter, r *http.Request) {
	employeeID, from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	advances, err := h.service.ListAdvances(r.Context(), employeeID, from, to)
	if err != nil {
		h.logger.Error("list advances", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"advances": advances})
}

func (h *Handler) listLeaves(w http.ResponseWriter, r *http.Request) {
	employeeID, from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	leaves, err := h.service.ListLeaves(r.Context(), employeeID, from, to)
	if err != nil {
		h.logger.Error("list leaves", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"leaves": leaves})
}

func (h *Handler) rangeParams(w http.ResponseWriter, r *http.Request) (int64, time.Time, time.Time, bool) {
	var employeeID int64
	var from, to time.Time
	if raw := r.URL.Query().Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, "invalid employee id")
			return 0, from, to, false
		}
		employeeID = id
	}
	if month := r.URL.Query().Get("month"); month != "" {
		start, end, err := shared.MonthRange(month)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, err.Error())
			return 0, from, to, false
		}
		from, to = start, end
	}
	return employeeID, from, to, true
}

func (h *Handler) respondEmployeeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrInactiveEmployee):
		shared.RespondError(w, http.StatusConflict, ErrInactiveEmployee.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
