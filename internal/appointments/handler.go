package appointments

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
)

// Handler exposes appointment endpoints.
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

// MountRoutes registers appointment routes. Mounted under /api/appointments.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(rbac.RoleMasterAdmin, rbac.RoleAdmin, rbac.RoleDoctor))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	patientID, _ := strconv.ParseInt(q.Get("patientId"), 10, 64)
	doctorID, _ := strconv.ParseInt(q.Get("doctorId"), 10, 64)

	filter := Filter{
		PatientID: patientID,
		DoctorID:  doctorID,
		Status:    q.Get("status"),
		Page:      page,
		PerPage:   perPage,
	}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = t
		}
	}

	items, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list appointments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Appointment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"appointments": items,
		"pagination":   pagination,
	})
}

type appointmentRequest struct {
	PatientID       int64  `json:"patientId" validate:"required,gt=0"`
	DoctorID        int64  `json:"doctorId" validate:"required,gt=0"`
	ScheduledAt     string `json:"scheduledAt" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,gt=0,lte=480"`
	Reason          string `json:"reason" validate:"max=500"`
	Status          string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Notes           string `json:"notes" validate:"max=2000"`
}

func (h *Handler) decodeAppointment(r *http.Request) (Appointment, error) {
	var req appointmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return Appointment{}, fmt.Errorf("%w: invalid json body", httpx.ErrValidation)
	}
	if err := h.validator.Struct(req); err != nil {
		return Appointment{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return Appointment{}, fmt.Errorf("%w: scheduledAt must be RFC3339", httpx.ErrValidation)
	}
	return Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		ScheduledAt:     at,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
		Status:          req.Status,
		Notes:           req.Notes,
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	a, err := h.decodeAppointment(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), a)
	if err != nil {
		h.logger.Error("create appointment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	a, err := h.decodeAppointment(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	a.ID = id
	updated, err := h.service.Update(r.Context(), a)
	if err != nil {
		h.logger.Error("update appointment", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", httpx.ErrValidation)
	}
	return id, nil
}
