// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"studyflow/internal/config"
	"studyflow/internal/handlers"
	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"
	"studyflow/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Temporary logger until the config is loaded.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	if err := db.AutoMigrate(
		&model.User{},
		&model.UserVerificationToken{},
		&model.PasswordResetToken{},
		&model.Subject{},
		&model.StudyLog{},
		&model.XPLedgerRecord{},
		&model.XPHistoryEntry{},
		&model.XPProcessedLog{},
		&model.Notification{},
	); err != nil {
		slog.Error("Error running schema migration", slog.Any("error", err))
		os.Exit(1)
	}

	// Local sqlite fallback for the XP ledger. The app keeps accepting XP
	// writes when the primary store is unreachable.
	localStore, err := repository.NewLocalStore(config.Cfg.App.LocalStorePath, logger)
	if err != nil {
		slog.Error("Error initializing local ledger store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := localStore.Close(); err != nil {
			slog.Error("Error closing local ledger store", slog.Any("error", err))
		}
	}()

	// Dependency injection
	userRepo := repository.NewGormUserRepository()
	tokenRepo := repository.NewGormTokenRepository()
	subjectRepo := repository.NewGormSubjectRepository()
	studyLogRepo := repository.NewGormStudyLogRepository()
	xpRepo := repository.NewGormXPRepository()
	notificationRepo := repository.NewGormNotificationRepository()

	mailer := service.NewMailer(&config.Cfg)

	authService := service.NewAuthService(db, userRepo, tokenRepo, mailer, &config.Cfg)
	subjectService := service.NewSubjectService(db, subjectRepo)
	notificationService := service.NewNotificationService(db, notificationRepo)
	xpService := service.NewXPService(db, xpRepo, studyLogRepo, localStore, notificationService, logger)
	studyLogService := service.NewStudyLogService(db, studyLogRepo, subjectRepo, xpService)
	reportService := service.NewReportService(db, studyLogRepo, subjectRepo)

	authHandler := handlers.NewAuthHandler(authService)
	subjectHandler := handlers.NewSubjectHandler(subjectService, logger)
	studyLogHandler := handlers.NewStudyLogHandler(studyLogService, logger)
	xpHandler := handlers.NewXPHandler(xpService, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger)
	reportHandler := handlers.NewReportHandler(reportService, logger)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Get("/auth/verify", authHandler.VerifyAccount)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/forgot-password", authHandler.RequestPasswordReset)
		r.Post("/auth/reset-password", authHandler.ResetPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			if config.Cfg.Auth.Enabled {
				slog.Info("Applying JWT authentication middleware")
				r.Use(middleware.JWTAuthMiddleware(&config.Cfg))
			} else {
				slog.Warn("Authentication disabled; trusting X-User-ID header (development only)")
				r.Use(middleware.DevUserContextMiddleware)
			}

			r.Get("/auth/me", authHandler.GetMe)

			r.Route("/subjects", func(r chi.Router) {
				r.Post("/", subjectHandler.PostSubject)
				r.Get("/", subjectHandler.GetSubjects)
				r.Get("/{subject_id}", subjectHandler.GetSubject)
				r.Patch("/{subject_id}", subjectHandler.PatchSubject)
				r.Delete("/{subject_id}", subjectHandler.DeleteSubject)
			})

			r.Route("/study-logs", func(r chi.Router) {
				r.Post("/", studyLogHandler.PostStudyLog)
				r.Get("/", studyLogHandler.GetStudyLogs)
				r.Get("/{log_id}", studyLogHandler.GetStudyLog)
				r.Delete("/{log_id}", studyLogHandler.DeleteStudyLog)
			})
			r.Post("/account/reset", studyLogHandler.ResetAccount)

			r.Route("/xp", func(r chi.Router) {
				r.Get("/", xpHandler.GetOverview)
				r.Post("/sync", xpHandler.PostSync)
				r.Post("/grant", xpHandler.PostGrant)
				r.Post("/remove", xpHandler.PostRemove)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.GetNotifications)
				r.Post("/{notification_id}/read", notificationHandler.PostMarkRead)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/summary", reportHandler.GetSummary)
				r.Get("/export", reportHandler.GetExport)
			})
		})
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sqlDB, err := db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
