package rbac

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// Handler exposes the permission administration and seed endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      Middleware
	catalog   *Catalog
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate Middleware, catalog *Catalog) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, catalog: catalog, validator: validator.New()}
}

// MountRoutes registers the admin RBAC routes. Mounted under /api/admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(RoleMasterAdmin, RoleAdmin))
		r.Get("/permissions", h.listPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(RoleMasterAdmin))
		r.Post("/permissions", h.syncPermissions)
		r.Put("/permissions", h.togglePermission)
		r.Post("/seed-rbac", h.seed)
	})
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	filter := PermissionFilter{
		Category: r.URL.Query().Get("category"),
		Page:     page,
		PerPage:  perPage,
	}
	perms, total, err := h.service.ListPermissions(r.Context(), filter)
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if perms == nil {
		perms = []Permission{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"permissions": perms,
		"pagination":  shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

// syncPermissions runs catalog enumeration plus permission synthesis without
// touching role templates.
func (h *Handler) syncPermissions(w http.ResponseWriter, r *http.Request) {
	counts, stats, err := h.service.SyncPermissions(r.Context(), h.catalog)
	if err != nil {
		h.logger.Error("sync permissions", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"created":     counts.Created,
		"updated":     counts.Updated,
		"totalRoutes": stats.Scanned,
	})
}

type togglePermissionRequest struct {
	ID       int64 `json:"id" validate:"required,gt=0"`
	IsActive *bool `json:"isActive" validate:"required"`
}

func (h *Handler) togglePermission(w http.ResponseWriter, r *http.Request) {
	var req togglePermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: id and isActive are required", httpx.ErrValidation))
		return
	}
	perm, err := h.service.TogglePermission(r.Context(), req.ID, *req.IsActive)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, fmt.Errorf("%w: permission %d", httpx.ErrNotFound, req.ID))
			return
		}
		h.logger.Error("toggle permission", slog.Any("error", err), slog.Int64("id", req.ID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

// seed runs the full bootstrap pipeline and reports aggregate counts. Seeding
// is idempotent on natural keys and safe to re-invoke after a partial
// failure.
func (h *Handler) seed(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Seed(r.Context(), h.catalog)
	if err != nil {
		h.logger.Error("seed rbac", slog.Any("error", err),
			slog.Int("permissionsCommitted", report.Permissions.Total),
			slog.Int("rolesCommitted", report.Roles.Total))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
