package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/application/usecase"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/adapter/postgres"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
	"github.com/joestar02/fleetdesk/infrastructure/config"
	"github.com/joestar02/fleetdesk/infrastructure/http/handler"
	"github.com/joestar02/fleetdesk/infrastructure/http/middleware"
	"github.com/joestar02/fleetdesk/infrastructure/security/permission"
	"github.com/joestar02/fleetdesk/infrastructure/service/logger"
	"github.com/joestar02/fleetdesk/infrastructure/service/password"
	"github.com/joestar02/fleetdesk/infrastructure/service/session"
	"github.com/joestar02/fleetdesk/infrastructure/service/throttle"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "fleetdesk",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	clk := clock.New()

	sink, err := audit.NewSink(audit.Config{
		SecurityLogPath: cfg.SecurityLogPath,
		DatabaseLogPath: cfg.DatabaseLogPath,
	}, clk)
	if err != nil {
		log.Fatalf("Failed to open audit streams: %v", err)
	}

	auditedDB := audit.NewDB(db, sink, clk, cfg.SlowQueryThreshold, cfg.TrackedTables)

	// Repositories
	actorRepo := postgres.NewActorRepositoryAdapter(auditedDB)
	vehicleRepo := postgres.NewVehicleRepositoryAdapter(auditedDB)
	driverRepo := postgres.NewDriverRepositoryAdapter(auditedDB)
	reservationRepo := postgres.NewReservationRepositoryAdapter(auditedDB)
	complianceRepo := postgres.NewComplianceRepositoryAdapter(auditedDB)
	organizationRepo := postgres.NewOrganizationRepositoryAdapter(auditedDB)

	// Permission table: static defaults plus persisted overrides, fixed at
	// startup.
	overrides, err := actorRepo.RolePermissionOverrides(ctx)
	if err != nil {
		structuredLogger.Warn(ctx, "Failed to load permission overrides, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		overrides = map[domain.Role][]string{}
	}
	resolver := permission.NewResolver(sink, clk, overrides)

	// Services
	tokenService, err := session.NewJWTService(cfg.SecretKey, cfg.SessionLifetime)
	if err != nil {
		log.Fatalf("Failed to initialize session service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)

	var loginThrottle outbound.LoginThrottle
	if cfg.RedisURL != "" {
		redisThrottle, err := throttle.NewRedisThrottle(throttle.RedisConfig{
			URL:           cfg.RedisURL,
			BlockAfter:    cfg.BlockAfterFailures,
			BlockDuration: cfg.BlockDuration,
		}, logger.Raw(structuredLogger))
		if err != nil {
			log.Fatalf("Failed to initialize redis throttle: %v", err)
		}
		loginThrottle = redisThrottle
	} else {
		structuredLogger.Info(ctx, "No REDIS_URL configured, using in-memory login throttle", nil)
		loginThrottle = throttle.NewMemoryThrottle(cfg.BlockAfterFailures, cfg.BlockDuration)
	}

	// Use cases
	authUseCase := usecase.NewAuthUseCase(
		actorRepo,
		driverRepo,
		passwordService,
		tokenService,
		loginThrottle,
		usecase.ThrottlePolicy{
			LoginLimit:     cfg.RateLimitLoginLimit,
			LoginWindow:    cfg.RateLimitLoginWindow,
			RegisterLimit:  cfg.RateLimitRegisterLimit,
			RegisterWindow: cfg.RateLimitRegisterWin,
		},
		sink,
		clk,
	)
	reservationUseCase := usecase.NewReservationUseCase(reservationRepo, vehicleRepo, driverRepo, resolver, sink, clk)
	complianceUseCase := usecase.NewComplianceUseCase(complianceRepo, resolver, clk)
	organizationUseCase := usecase.NewOrganizationUseCase(organizationRepo, resolver, sink)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(tokenService, actorRepo, driverRepo, clk)
	authHandler := handler.NewAuthHandler(authUseCase, cfg.SessionCookieSecure)
	reservationHandler := handler.NewReservationHandler(reservationUseCase)
	complianceHandler := handler.NewComplianceHandler(complianceUseCase)
	organizationHandler := handler.NewOrganizationHandler(organizationUseCase)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authMiddleware.OptionalAuth(authHandler.Logout)).Methods(http.MethodPost)

	api.HandleFunc("/reservations", authMiddleware.RequireAuth(reservationHandler.List)).Methods(http.MethodGet)
	api.HandleFunc("/reservations", authMiddleware.RequireAuth(reservationHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/reservations/force", authMiddleware.RequireAuth(reservationHandler.ForceCreate)).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}", authMiddleware.RequireAuth(reservationHandler.Get)).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id:[0-9]+}", authMiddleware.RequireAuth(reservationHandler.Update)).Methods(http.MethodPut)
	api.HandleFunc("/reservations/{id:[0-9]+}/confirm", authMiddleware.RequireAuth(reservationHandler.Confirm)).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/start", authMiddleware.RequireAuth(reservationHandler.Start)).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/complete", authMiddleware.RequireAuth(reservationHandler.Complete)).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/cancel", authMiddleware.RequireAuth(reservationHandler.Cancel)).Methods(http.MethodPost)

	api.HandleFunc("/compliance/dashboard", authMiddleware.RequireAuth(complianceHandler.Dashboard)).Methods(http.MethodGet)

	api.HandleFunc("/organizations/{id:[0-9]+}", authMiddleware.RequireAuth(organizationHandler.Get)).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy"}`)
	})

	// Middleware chain, outermost first: correlation -> https -> CORS ->
	// access log -> CSRF.
	var root http.Handler = router
	root = middleware.CSRFMiddleware(cfg.SessionCookieSecure)(root)
	root = middleware.AccessLogMiddleware(sink, clk)(root)
	root = middleware.CORSMiddleware(cfg.AllowedOrigins)(root)
	if cfg.ForceHTTPS {
		root = middleware.RequireHTTPS(root)
	}
	root = middleware.CorrelationIDMiddleware(root)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
