package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/svitlms/internal/app/controllers"
	appMigrations "github.com/yigit/svitlms/internal/app/migrations"
	appRepos "github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/app/repositories/memory"
	appRoutes "github.com/yigit/svitlms/internal/app/routes"
	appServices "github.com/yigit/svitlms/internal/app/services"
	"github.com/yigit/svitlms/internal/config"
	"github.com/yigit/svitlms/internal/db"
	appMiddleware "github.com/yigit/svitlms/internal/middleware"
	pkgAuth "github.com/yigit/svitlms/internal/pkg/auth"
	"github.com/yigit/svitlms/internal/pkg/email"
	"github.com/yigit/svitlms/internal/pkg/filestorage"
	"github.com/yigit/svitlms/internal/pkg/logger"
	"github.com/yigit/svitlms/internal/seed"
)

// UploadsPath is the URL prefix uploaded files are served under.
const UploadsPath = "/uploads"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	FileStorage    filestorage.FileStorage
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupRepositories opens the configured storage driver, applies migrations
// and seeds the demo data. The returned database is nil for the memory
// driver.
func SetupRepositories(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, *db.PostgresDB, error) {
	var (
		repos    *appRepos.Repositories
		database *db.PostgresDB
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		lgr.Info().Str("host", cfg.Database.Host).Msg("Establishing database connection...")
		var err error
		database, err = db.NewPostgresDB(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, nil, err
		}

		if _, err := os.Stat(cfg.Database.MigrationsDir); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", cfg.Database.MigrationsDir, err)
		}
		if err := appMigrations.NewMigrator(database, lgr).MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		repos = appRepos.NewRepositories(database.Pool)
	default:
		lgr.Info().Msg("Using in-memory storage")
		repos = memory.New()
	}

	if cfg.Database.Seed {
		if err := seed.CreateDefaultData(ctx, repos, lgr, time.Now()); err != nil {
			if database != nil {
				database.Close()
			}
			return nil, nil, fmt.Errorf("failed to create default data: %w", err)
		}
	}

	return repos, database, nil
}

// PublicBaseURL is the address clients reach the server at.
func PublicBaseURL(cfg *config.Config) string {
	if cfg.Server.PublicURL != "" {
		return strings.TrimRight(cfg.Server.PublicURL, "/")
	}
	return "http://localhost:" + cfg.Server.Port
}

// BuildDependencies initializes application services and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, PublicBaseURL(cfg)+UploadsPath, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  cfg.AccessTokenTTL(),
		RefreshTokenExp: cfg.RefreshTokenTTL(),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	mailer := email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.Username,
		Password:  cfg.Mail.Password,
		FromName:  cfg.Mail.FromName,
		FromEmail: cfg.Mail.FromEmail,
		UseTLS:    cfg.Mail.UseTLS,
		ResetURL:  cfg.Mail.ResetURL,
	}, lgr.With().Str("component", "mail").Logger())

	deps.Services = appServices.NewServices(repos, deps.JWTService, deps.FileStorage, mailer, lgr)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	ctrlLogger := lgr.With().Str("component", "http").Logger()
	s := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(s.Auth, ctrlLogger),
		User:       appControllers.NewUserController(s.Users, s.Auth, ctrlLogger),
		Course:     appControllers.NewCourseController(s.Courses, s.Materials, s.Assignments, ctrlLogger),
		Material:   appControllers.NewMaterialController(s.Materials, ctrlLogger),
		Assignment: appControllers.NewAssignmentController(s.Assignments, ctrlLogger),
		Feed:       appControllers.NewFeedController(s.Announcements, s.Grades),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	// Multipart bodies above this size spill to temporary files.
	router.MaxMultipartMemory = 32 << 20

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	router.Static(UploadsPath, cfg.Server.StoragePath)

	return router, nil
}
