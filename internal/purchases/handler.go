package purchases

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

// Handler wires HTTP endpoints for stock purchases.
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

// MountRoutes registers purchase routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPurchases)
	r.Post("/", h.createPurchase)
	r.Get("/{id}", h.getPurchase)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	req := ListPurchasesRequest{Page: page, PerPage: perPage}
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
	purchases, total, err := h.service.ListPurchases(r.Context(), req)
	if err != nil {
		h.logger.Error("list purchases", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{
		"purchases":  purchases,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req CreatePurchaseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, "purchases"); err != nil {
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
	purchase, err := h.service.CreatePurchase(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			shared.RespondError(w, http.StatusUnprocessableEntity, ErrUnknownProduct.Error())
			return
		}
		h.logger.Error("create purchase", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusCreated, purchase)
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}
	purchase, err := h.service.GetPurchase(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Error("get purchase", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, purchase)
}
