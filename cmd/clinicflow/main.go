package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/app"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/appointments"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/auth"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/billing"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/dashboard"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/inventory"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/mailer"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/observability"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/patients"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/cache"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/db"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/prescriptions"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/rbac"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/roles"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/users"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/jobs"
)

// mailQueue adapts the jobs client to the notifier interfaces used by the
// mail and appointment modules.
type mailQueue struct {
	client *jobs.Client
}

func (q mailQueue) EnqueueEmail(ctx context.Context, to, subject, body string) error {
	_, err := q.client.EnqueueSendEmail(ctx, jobs.SendEmailPayload{To: to, Subject: subject, Body: body})
	return err
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "clinicflow_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, logger, cfg.SeedTimeout)
	rbacService.OnSeed = metrics.RecordSeed
	gate := rbac.Middleware{Logger: logger, OnDenied: metrics.RecordDenial}
	catalog := rbac.DefaultCatalog()
	rbacHandler := rbac.NewHandler(logger, rbacService, gate, catalog)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	rolesService := roles.NewService(roles.NewRepository(dbpool))
	rolesHandler := roles.NewHandler(logger, rolesService, gate)

	usersService := users.NewService(users.NewRepository(dbpool))
	usersHandler := users.NewHandler(logger, usersService, gate, auditLogger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	queue := mailQueue{client: jobClient}

	patientsService := patients.NewService(patients.NewRepository(dbpool))
	patientsHandler := patients.NewHandler(logger, patientsService, gate)

	appointmentsService := appointments.NewService(appointments.NewRepository(dbpool), queue, logger)
	appointmentsHandler := appointments.NewHandler(logger, appointmentsService, gate)

	billingService := billing.NewService(billing.NewRepository(dbpool), idempotencyStore)
	billingHandler := billing.NewHandler(logger, billingService, gate)

	prescriptionsService := prescriptions.NewService(prescriptions.NewRepository(dbpool))
	prescriptionsHandler := prescriptions.NewHandler(logger, prescriptionsService, gate)

	inventoryService := inventory.NewService(inventory.NewRepository(dbpool))
	inventoryHandler := inventory.NewHandler(logger, inventoryService, gate)

	mailHandler := mailer.NewHandler(logger, queue, gate)

	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool), redisClient, 30*time.Second, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Metrics:              metrics,
		AuthHandler:          authHandler,
		RBACHandler:          rbacHandler,
		RolesHandler:         rolesHandler,
		UsersHandler:         usersHandler,
		PatientsHandler:      patientsHandler,
		AppointmentsHandler:  appointmentsHandler,
		BillingHandler:       billingHandler,
		PrescriptionsHandler: prescriptionsHandler,
		InventoryHandler:     inventoryHandler,
		MailHandler:          mailHandler,
		DashboardHandler:     dashboardHandler,
		JobHandler:           jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
