package billing

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
)

// Handler exposes billing endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers billing routes. Mounted under /api/billing.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(rbac.RoleMasterAdmin, rbac.RoleAdmin, rbac.RoleDoctor))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	patientID, _ := strconv.ParseInt(q.Get("patientId"), 10, 64)

	items, pagination, err := h.service.List(r.Context(), Filter{
		PatientID: patientID,
		Status:    q.Get("status"),
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   items,
		"pagination": pagination,
	})
}

type lineItemRequest struct {
	Description string `json:"description" validate:"required,max=200"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	UnitCents   int64  `json:"unitCents" validate:"gte=0"`
}

type createInvoiceRequest struct {
	PatientID int64             `json:"patientId" validate:"required,gt=0"`
	Currency  string            `json:"currency" validate:"omitempty,len=3"`
	Items     []lineItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	inv := Invoice{PatientID: req.PatientID, Currency: req.Currency}
	for _, item := range req.Items {
		inv.Items = append(inv.Items, LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitCents:   item.UnitCents,
		})
	}

	created, err := h.service.Create(r.Context(), inv, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}
