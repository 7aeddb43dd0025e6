package patients

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
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

var staffRoles = []string{rbac.RoleMasterAdmin, rbac.RoleAdmin, rbac.RoleDoctor}

// Handler exposes patient endpoints.
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

// MountRoutes registers patient routes. Mounted under /api/patients.
func (h *Handler) MountRoutes(r chi.Router) {
	// Self-service profile first so it is not shadowed by /{id}.
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(rbac.RoleMasterAdmin, rbac.RoleAdmin, rbac.RoleDoctor, rbac.RolePatient))
		r.Get("/me/profile", h.selfProfile)
		r.Put("/me/profile", h.updateSelfProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(staffRoles...))
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

	items, pagination, err := h.service.List(r.Context(), Filter{
		Search:  q.Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.logger.Error("list patients", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Patient{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"patients":   items,
		"pagination": pagination,
	})
}

type patientRequest struct {
	UserID      *int64  `json:"userId,omitempty"`
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"max=30"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Gender      string  `json:"gender" validate:"omitempty,oneof=male female other"`
	Address     string  `json:"address" validate:"max=500"`
	BloodGroup  string  `json:"bloodGroup" validate:"max=5"`
	Allergies   string  `json:"allergies" validate:"max=1000"`
	Notes       string  `json:"notes" validate:"max=2000"`
}

func (h *Handler) decodePatient(r *http.Request) (Patient, error) {
	var req patientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return Patient{}, fmt.Errorf("%w: invalid json body", httpx.ErrValidation)
	}
	if err := h.validator.Struct(req); err != nil {
		return Patient{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	p := Patient{
		UserID:     req.UserID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Gender:     req.Gender,
		Address:    req.Address,
		BloodGroup: req.BloodGroup,
		Allergies:  req.Allergies,
		Notes:      req.Notes,
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return Patient{}, fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", httpx.ErrValidation)
		}
		p.DateOfBirth = &dob
	}
	return p, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, err := h.decodePatient(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), p)
	if err != nil {
		h.logger.Error("create patient", slog.Any("error", err))
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
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.decodePatient(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p.ID = id
	updated, err := h.service.Update(r.Context(), p)
	if err != nil {
		h.logger.Error("update patient", slog.Any("error", err), slog.Int64("id", id))
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

func (h *Handler) selfProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "no session")
		return
	}
	p, err := h.service.SelfProfile(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type selfProfileRequest struct {
	Phone   string `json:"phone" validate:"max=30"`
	Address string `json:"address" validate:"max=500"`
}

func (h *Handler) updateSelfProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "no session")
		return
	}
	var req selfProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	p, err := h.service.UpdateSelfProfile(r.Context(), userID, req.Phone, req.Address)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", httpx.ErrValidation)
	}
	return id, nil
}

func sessionUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
