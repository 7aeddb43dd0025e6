package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/appointments"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/auth"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/billing"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/dashboard"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/inventory"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/mailer"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/observability"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/patients"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/prescriptions"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/roles"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/users"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler          *auth.Handler
	RBACHandler          *rbac.Handler
	RolesHandler         *roles.Handler
	UsersHandler         *users.Handler
	PatientsHandler      *patients.Handler
	AppointmentsHandler  *appointments.Handler
	BillingHandler       *billing.Handler
	PrescriptionsHandler *prescriptions.Handler
	InventoryHandler     *inventory.Handler
	MailHandler          *mailer.Handler
	DashboardHandler     *dashboard.Handler
	JobHandler           *jobs.Handler
}

// NewRouter constructs the chi.Router with ClinicFlow defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Route("/admin", func(r chi.Router) {
			params.RBACHandler.MountRoutes(r)
			params.RolesHandler.MountRoutes(r)
			params.UsersHandler.MountAdminRoutes(r)
		})

		params.UsersHandler.MountProfileRoutes(r)

		r.Route("/patients", params.PatientsHandler.MountRoutes)
		r.Route("/appointments", params.AppointmentsHandler.MountRoutes)
		r.Route("/billing", params.BillingHandler.MountRoutes)
		r.Route("/prescriptions", params.PrescriptionsHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/email", params.MailHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)

		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}

		// Diagnostics endpoint; excluded from the permission catalog.
		r.Get("/debug/session", func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": false})
				return
			}
			httpx.JSON(w, http.StatusOK, map[string]any{
				"authenticated": sess.User() != "",
				"userId":        sess.User(),
				"role":          sess.Role(),
			})
		})
	})

	return r
}
