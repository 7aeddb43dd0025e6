package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
)

// Enqueuer submits outbound mail to the background queue.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
}

// Handler exposes the transactional email endpoint.
type Handler struct {
	logger    *slog.Logger
	enqueuer  Enqueuer
	gate      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, enqueuer Enqueuer, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, enqueuer: enqueuer, gate: gate, validator: validator.New()}
}

// MountRoutes registers mail routes. Mounted under /api/email.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(rbac.RoleMasterAdmin, rbac.RoleAdmin, rbac.RoleDoctor))
		r.Post("/send", h.send)
	})
}

type sendRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required,max=10000"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	if err := h.enqueuer.EnqueueEmail(r.Context(), req.To, req.Subject, req.Body); err != nil {
		h.logger.Error("enqueue email", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"queued": true})
}
