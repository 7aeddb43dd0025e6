package prescriptions

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

// Handler exposes prescription endpoints.
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

// MountRoutes registers prescription routes. Mounted under /api/prescriptions.
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
	doctorID, _ := strconv.ParseInt(q.Get("doctorId"), 10, 64)

	items, pagination, err := h.service.List(r.Context(), Filter{
		PatientID: patientID,
		DoctorID:  doctorID,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		h.logger.Error("list prescriptions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Prescription{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"prescriptions": items,
		"pagination":    pagination,
	})
}

type medicationRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Dosage    string `json:"dosage" validate:"required,max=100"`
	Frequency string `json:"frequency" validate:"max=100"`
	Duration  string `json:"duration" validate:"max=100"`
}

type createPrescriptionRequest struct {
	PatientID   int64               `json:"patientId" validate:"required,gt=0"`
	DoctorID    int64               `json:"doctorId" validate:"required,gt=0"`
	Medications []medicationRequest `json:"medications" validate:"required,min=1,dive"`
	Notes       string              `json:"notes" validate:"max=2000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPrescriptionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	p := Prescription{PatientID: req.PatientID, DoctorID: req.DoctorID, Notes: req.Notes}
	for _, med := range req.Medications {
		p.Medications = append(p.Medications, MedicationLine{
			Name:      med.Name,
			Dosage:    med.Dosage,
			Frequency: med.Frequency,
			Duration:  med.Duration,
		})
	}

	created, err := h.service.Create(r.Context(), p)
	if err != nil {
		h.logger.Error("create prescription", slog.Any("error", err))
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
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
