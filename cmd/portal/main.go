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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/olp/portal/internal/apiclient"
	authMiddleware "github.com/olp/portal/internal/auth/middleware"
	"github.com/olp/portal/internal/auth/service"
	"github.com/olp/portal/internal/editor"
	"github.com/olp/portal/internal/handlers"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/repositories"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"github.com/olp/portal/libs/auth/middleware"
	"github.com/olp/portal/libs/config"
	"github.com/olp/portal/libs/logger"
	loggerMiddleware "github.com/olp/portal/libs/logger/middleware"
	sharedMiddleware "github.com/olp/portal/libs/middlewares"
	"go.uber.org/zap"
)

// @title Online Learning Portal API
// @version 1.0
// @description Backend for the learning portal screens, fronting the learning platform API

// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting learning portal", zap.String("api_base_url", cfg.API.BaseURL))

	// Sync journal, kept only when a database is configured
	var (
		journal     editor.Journal = editor.NopJournal{}
		journalRepo services.SyncJournalRepository
	)
	if cfg.JournalEnabled() {
		db, err := connectDB(cfg.DSN())
		if err != nil {
			logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := runMigrations(db); err != nil {
			logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		repo := repositories.NewSyncJournalRepository(db)
		journal = repo
		journalRepo = repo
	} else {
		logger.Logger.Info("No database configured, sync journal disabled")
	}

	// Session store
	store, sweeper, closeStore, err := newSessionStore(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer closeStore()
	if sweeper != nil {
		sweeper.Start()
		defer sweeper.Stop()
	}

	// Platform gateway
	gateway := apiclient.NewGateway(cfg.API, store, logger.Logger)
	connect := services.GatewayConnector(gateway)
	inspector := service.NewTokenInspector()

	// Initialize services
	sessionService := services.NewSessionService(store, connect, inspector, cfg.Session.TTL, logger.Logger)
	catalogService := services.NewCatalogService(connect, logger.Logger)
	learningService := services.NewLearningService(connect, logger.Logger)
	certificateService := services.NewCertificateService(connect, logger.Logger)
	instructorService := services.NewInstructorService(connect, editor.NewApplier(journal, logger.Logger), logger.Logger)
	adminService := services.NewAdminService(connect, logger.Logger)
	profileService := services.NewProfileService(connect, logger.Logger)

	// Initialize handlers
	secure := cfg.Session.CookieSecure
	sessionHandler := handlers.NewSessionHandler(sessionService, store, secure, logger.Logger)
	viewHandlers := []interface {
		RegisterRoutes(r chi.Router, guards handlers.Guards)
	}{
		handlers.NewCatalogHandler(catalogService, secure, logger.Logger),
		handlers.NewLearningHandler(learningService, secure, logger.Logger),
		handlers.NewCertificateHandler(certificateService, secure, logger.Logger),
		handlers.NewInstructorHandler(instructorService, profileService, secure, logger.Logger),
		handlers.NewAdminHandler(adminService, secure, logger.Logger),
		handlers.NewProfileHandler(profileService, secure, logger.Logger),
	}

	// Initialize auth middleware
	guards := handlers.Guards{
		Auth:       authMiddleware.AuthMiddleware(store, logger.Logger),
		Student:    authMiddleware.RoleMiddleware(inspector, models.RoleStudent),
		Instructor: authMiddleware.RoleMiddleware(inspector, models.RoleInstructor, models.RoleAdmin),
		Admin:      authMiddleware.RoleMiddleware(inspector, models.RoleAdmin),
	}

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize, cfg.Server.MaxUploadSize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		sessionHandler.RegisterRoutes(r, guards)

		r.Route("/views", func(r chi.Router) {
			for _, h := range viewHandlers {
				h.RegisterRoutes(r, guards)
			}
		})

		// Operator routes need both an API key and the journal database
		if cfg.Server.OpsAPIKey != "" && journalRepo != nil {
			journalHandler := handlers.NewJournalHandler(services.NewJournalService(journalRepo), logger.Logger)
			journalHandler.RegisterRoutes(r, middleware.APIKeyMiddleware(cfg.Server.OpsAPIKey))
		}
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// newSessionStore builds the configured session store
// Memory and file stores come with a sweeper for expired sessions, Redis expires keys itself
func newSessionStore(cfg *config.Config) (session.Store, *session.Sweeper, func(), error) {
	noop := func() {}

	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, noop, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return session.NewRedisStore(client), nil, func() { client.Close() }, nil

	case config.SessionStoreFile:
		store, err := session.NewFileStore(cfg.Session.FilePath, cfg.Session.EncryptionKey, logger.Logger)
		if err != nil {
			return nil, nil, noop, err
		}
		sweeper, err := session.NewSweeper(store, cfg.Session.SweepSchedule, logger.Logger)
		if err != nil {
			return nil, nil, noop, err
		}
		return store, sweeper, noop, nil

	default:
		store := session.NewMemoryStore(logger.Logger)
		sweeper, err := session.NewSweeper(store, cfg.Session.SweepSchedule, logger.Logger)
		if err != nil {
			return nil, nil, noop, err
		}
		return store, sweeper, noop, nil
	}
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "portal_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Try parent directories when running from cmd/portal
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
