package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruitment_portal/internal/config"
	"recruitment_portal/internal/handler"
	"recruitment_portal/internal/logger"
	"recruitment_portal/internal/metrics"
	"recruitment_portal/internal/middleware"
	"recruitment_portal/internal/model"
	"recruitment_portal/internal/repository"
	"recruitment_portal/internal/service"
	"recruitment_portal/internal/storage"
	"recruitment_portal/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("No .env file found, relying on environment variables")
	}

	// --- Configuration ---
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := config.Migrate(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// --- Document Storage ---
	store, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Uploads.Driver).Msg("Failed to initialize document storage")
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	// --- Initialize Repositories ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.Lifetime)
	userRepo := repository.NewUserRepository(dbPool)
	jobRepo := repository.NewJobRepository(dbPool)
	applicationRepo := repository.NewApplicationRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, recorder)
	jobService := service.NewJobService(jobRepo)
	applicationService := service.NewApplicationService(applicationRepo, jobRepo, store, cfg.Uploads.MaxFileSize, recorder)

	seedConfiguredAdmin(ctx, authService, cfg)

	router := handler.NewRouter(handler.RouterDeps{
		AuthService:        authService,
		JobService:         jobService,
		ApplicationService: applicationService,
		JWTUtil:            jwtUtil,
		Metrics:            recorder,
		Gatherer:           registry,
		Pinger:             dbPool,
		SubmitLimiter:      middleware.NewRateLimiter(cfg.RateLimit.SubmissionsPerMinute, cfg.RateLimit.Burst),
		CORSOrigin:         cfg.Server.CORSOrigin,
		MaxUploadBytes:     cfg.Uploads.MaxFileSize,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exiting")
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.FileStorage, error) {
	if cfg.Uploads.Driver == config.StorageS3 {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.Uploads.S3.Bucket,
			Region:          cfg.Uploads.S3.Region,
			Endpoint:        cfg.Uploads.S3.Endpoint,
			AccessKeyID:     cfg.Uploads.S3.AccessKeyID,
			SecretAccessKey: cfg.Uploads.S3.SecretAccessKey,
		})
	}
	logger.Info().Str("dir", cfg.Uploads.Dir).Msg("Documents will be stored on local disk")
	return storage.NewLocalStorage(cfg.Uploads.Dir)
}

// seedConfiguredAdmin creates the admin account named in the configuration
// on first boot. An existing account is left untouched.
func seedConfiguredAdmin(ctx context.Context, authService service.AuthService, cfg *config.Config) {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return
	}
	admin, err := authService.SeedAdmin(ctx, model.RegisterRequest{
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
		Email:     cfg.Admin.Email,
		Phone:     cfg.Admin.Phone,
		Password:  cfg.Admin.Password,
	})
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		logger.Info().Str("email", cfg.Admin.Email).Msg("Admin account already exists")
	case err != nil:
		logger.Error().Err(err).Msg("Failed to seed admin account")
	default:
		logger.Info().Str("id", admin.ID).Str("email", admin.Email).Msg("Admin account created")
	}
}
