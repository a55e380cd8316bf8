package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rfp-hub/internal/config"
	"rfp-hub/internal/database"
	"rfp-hub/internal/email"
	"rfp-hub/internal/handlers"
	"rfp-hub/internal/logger"
	"rfp-hub/internal/middleware"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
	"rfp-hub/internal/vault"

	authpkg "rfp-hub/internal/auth"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Overlay secrets from Vault before anything that consumes them
	if cfg.Vault.Enabled {
		vaultClient, err := vault.NewClient(&vault.Config{
			Address: cfg.Vault.Address,
			Token:   cfg.Vault.Token,
		})
		if err != nil {
			slog.Error("Failed to create Vault client", "error", err)
			os.Exit(1)
		}
		if err := vaultClient.Health(); err != nil {
			slog.Error("Vault health check failed", "error", err)
			os.Exit(1)
		}
		secrets, err := vaultClient.GetSecret(cfg.Vault.SecretPath)
		if err != nil {
			slog.Error("Failed to read secrets from Vault", "error", err, "path", cfg.Vault.SecretPath)
			os.Exit(1)
		}
		cfg.ApplySecrets(secrets)
		slog.Info("Secrets loaded from Vault", "path", cfg.Vault.SecretPath)
	}
	if cfg.JWT.Secret == "" {
		slog.Error("JWT secret is not configured")
		os.Exit(1)
	}

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	projectRepo := repository.NewProjectRepository(db.DB)
	questionRepo := repository.NewQuestionRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)

	// Clear out sessions that expired while the server was down
	if err := sessionRepo.DeleteExpiredSessions(); err != nil {
		slog.Error("Failed to clean up expired sessions", "error", err)
	}

	// Initialize services
	authService := authpkg.NewService(&cfg.JWT)
	emailService := email.NewService(&cfg.Email)
	authSvc := service.NewAuthService(userRepo, sessionRepo, authService)
	userSvc := service.NewUserService(userRepo, sessionRepo, authService, emailService, cfg.Retry)
	questionSvc := service.NewQuestionService(questionRepo, userRepo)
	commentSvc := service.NewCommentService(commentRepo, questionRepo)
	ingestSvc := service.NewIngestService(db.DB, projectRepo, questionRepo)

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authSvc)
	rbacMw := middleware.NewRBACMiddleware()
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	auditMw := middleware.NewAuditMiddleware(auditRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, auditMw)
	profileHandler := handlers.NewProfileHandler(userSvc, auditMw)
	adminHandler := handlers.NewAdminHandler(userSvc, auditMw)
	questionHandler := handlers.NewQuestionHandler(questionSvc, auditMw)
	commentHandler := handlers.NewCommentHandler(commentSvc)
	projectHandler := handlers.NewProjectHandler(projectRepo, questionSvc, auditMw)
	ingestHandler := handlers.NewIngestHandler(ingestSvc, cfg.Ingest.CallbackToken)
	auditHandler := handlers.NewAuditHandler(auditRepo)

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/accept-invite", authHandler.AcceptInvite)

	// Pipeline callback (token-authenticated, no user session)
	mux.HandleFunc("POST /api/ingest/rfp-results", ingestHandler.Callback)

	// Protected routes
	mux.Handle("GET /api/user/profile", authMw.Authenticate(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PATCH /api/user/profile", authMw.Authenticate(http.HandlerFunc(profileHandler.Update)))

	mux.Handle("GET /api/rfp-projects", authMw.Authenticate(http.HandlerFunc(projectHandler.List)))
	mux.Handle("GET /api/rfp-projects/{id}", authMw.Authenticate(http.HandlerFunc(projectHandler.Get)))
	mux.Handle("GET /api/rfp-projects/{id}/questions", authMw.Authenticate(http.HandlerFunc(projectHandler.ListQuestions)))

	mux.Handle("GET /api/rfp-questions/{id}", authMw.Authenticate(http.HandlerFunc(questionHandler.Get)))
	mux.Handle("POST /api/rfp-questions/update-status", authMw.Authenticate(http.HandlerFunc(questionHandler.UpdateStatus)))
	mux.Handle("POST /api/rfp-questions/update-assignee", authMw.Authenticate(http.HandlerFunc(questionHandler.UpdateAssignee)))
	mux.Handle("POST /api/rfp-questions/update-response", authMw.Authenticate(http.HandlerFunc(questionHandler.UpdateResponse)))

	mux.Handle("POST /api/rfp-comments/create", authMw.Authenticate(http.HandlerFunc(commentHandler.Create)))
	mux.Handle("GET /api/rfp-questions/{id}/comments", authMw.Authenticate(http.HandlerFunc(commentHandler.List)))

	// Admin routes
	mux.Handle("GET /api/admin/users",
		authMw.Authenticate(
			rbacMw.RequireRole("admin")(
				http.HandlerFunc(adminHandler.ListUsers),
			),
		),
	)
	mux.Handle("POST /api/admin/invite-user",
		authMw.Authenticate(
			rbacMw.RequireRole("admin")(
				http.HandlerFunc(adminHandler.InviteUser),
			),
		),
	)
	mux.Handle("POST /api/admin/update-user-role",
		authMw.Authenticate(
			rbacMw.RequireRole("admin")(
				http.HandlerFunc(adminHandler.UpdateRole),
			),
		),
	)
	mux.Handle("POST /api/admin/delete-user",
		authMw.Authenticate(
			rbacMw.RequireRole("admin")(
				http.HandlerFunc(adminHandler.DeleteUser),
			),
		),
	)
	mux.Handle("GET /api/admin/audit-logs",
		authMw.Authenticate(
			rbacMw.RequireRole("admin")(
				http.HandlerFunc(auditHandler.List),
			),
		),
	)
	mux.Handle("DELETE /api/admin/projects/{id}",
		authMw.Authenticate(
			rbacMw.RequireRole("admin")(
				http.HandlerFunc(projectHandler.Delete),
			),
		),
	)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte(`{"status":"unhealthy","database":"error"}`)); err != nil {
				slog.Error("Failed to write health check response", "error", err)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`)); err != nil {
			slog.Error("Failed to write health check response", "error", err)
		}
	})

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
