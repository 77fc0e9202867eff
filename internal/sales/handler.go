package sales

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kasbook/kasbook/internal/ledger"
	"github.com/kasbook/kasbook/internal/shared"
)

// Handler wires HTTP endpoints for sale documents.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validator   *validator.Validate
	idempotency *shared.IdempotencyStore
}

// NewHandler constructs a Handler instance. The idempotency store may be nil,
// in which case Idempotency-Key headers are ignored.
func NewHandler(logger *slog.Logger, service *Service, idempotency *shared.IdempotencyStore) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), idempotency: idempotency}
}

// MountRoutes registers sales routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSales)
	r.Post("/", h.createSale)
	r.Get("/{id}", h.getSale)
	r.Post("/{id}/pay", h.markPaid)
	r.Post("/{id}/invoice", h.convertToInvoice)
	r.Post("/{id}/void", h.voidSale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	req := ListSalesRequest{
		Status:  ledger.SaleStatus(r.URL.Query().Get("status")),
		Page:    page,
		PerPage: perPage,
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		req.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		req.To = t
	}
	sales, total, err := h.service.ListSales(r.Context(), req)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{
		"sales":      sales,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, "sales"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				shared.RespondError(w, http.StatusConflict, err.Error())
				return
			}
			h.logger.Error("idempotency check", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
	}
	userID := shared.SessionFromContext(r.Context()).User()
	sale, err := h.service.CreateSale(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			shared.RespondError(w, http.StatusUnprocessableEntity, ErrUnknownProduct.Error())
			return
		}
		h.logger.Error("create sale", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusCreated, sale)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Error("get sale", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, sale)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.service.MarkPaid, "mark sale paid")
}

func (h *Handler) convertToInvoice(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.service.ConvertToInvoice, "convert quotation")
}

func (h *Handler) voidSale(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.service.VoidSale, "void sale")
}

func (h *Handler) doTransition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (Sale, error), op string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	sale, err := fn(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			shared.RespondError(w, http.StatusNotFound, ErrNotFound.Error())
		case errors.Is(err, ErrInvalidTransition):
			shared.RespondError(w, http.StatusConflict, ErrInvalidTransition.Error())
		default:
			h.logger.Error(op, slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}
	shared.RespondJSON(w, http.StatusOK, sale)
}
