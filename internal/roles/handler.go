package roles

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
)

// Handler manages role management endpoints.
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

// MountRoutes registers role routes. Mounted under /api/admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(rbac.RoleMasterAdmin, rbac.RoleAdmin))
		r.Get("/roles", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(rbac.RoleMasterAdmin))
		r.Post("/roles", h.create)
		r.Put("/roles", h.update)
		r.Delete("/roles", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	populate := r.URL.Query().Get("populate") == "permissions"
	views, err := h.service.List(r.Context(), populate)
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if views == nil {
		views = []RoleView{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": views})
}

type createRoleRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Description   string  `json:"description" validate:"max=500"`
	PermissionIDs []int64 `json:"permissionIds"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	role, err := h.service.Create(r.Context(), req.Name, req.Description, req.PermissionIDs)
	if err != nil {
		h.logger.Error("create role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

type updateRoleRequest struct {
	ID            int64   `json:"id" validate:"required,gt=0"`
	Name          *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=500"`
	PermissionIDs []int64 `json:"permissionIds,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	role, err := h.service.Update(r.Context(), req.ID, req.Name, req.Description, req.PermissionIDs)
	if err != nil {
		h.respondRoleError(w, err, req.ID)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

type deleteRoleRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: id is required", httpx.ErrValidation))
		return
	}
	if err := h.service.Delete(r.Context(), req.ID); err != nil {
		h.respondRoleError(w, err, req.ID)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": req.ID})
}

func (h *Handler) respondRoleError(w http.ResponseWriter, err error, id int64) {
	if errors.Is(err, ErrSystemRole) {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrDuplicate) && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error("role mutation", slog.Any("error", err), slog.Int64("id", id))
	}
	httpx.RespondError(w, err)
}
