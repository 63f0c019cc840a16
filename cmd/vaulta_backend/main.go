package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
	"github.com/sleepystack/vaulta/internal/core/services"
	"github.com/sleepystack/vaulta/internal/handlers"
	"github.com/sleepystack/vaulta/internal/middleware"
	"github.com/sleepystack/vaulta/internal/platform/config"
	"github.com/sleepystack/vaulta/internal/repositories/database/pgsql"
	"github.com/sleepystack/vaulta/internal/repositories/memory"
	"github.com/sleepystack/vaulta/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ledgerRepo, userRepo, cleanup := buildRepositories(logger, cfg)
	defer cleanup()

	serviceContainer := services.NewServiceContainer(ledgerRepo, userRepo)

	if cfg.AdminPassword != "" {
		if err := serviceContainer.User.EnsureAdminUser(context.Background(),
			cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("Failed to ensure seed admin user", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildRepositories selects the storage backend: PostgreSQL when PGSQL_URL is
// configured, the in-memory ledger store otherwise.
func buildRepositories(logger *slog.Logger, cfg *config.Config) (portsrepo.LedgerRepository, portsrepo.UserRepository, func()) {
	if cfg.DatabaseURL == "" {
		logger.Info("Using in-memory ledger store")
		store := memory.NewStore(cfg.LockTimeout)
		return store, store, func() {}
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Database connection pool established")

	runMigrations(logger, cfg.DatabaseURL)

	provider := pgsql.NewRepositoryProvider(dbPool, cfg.LockTimeout)
	return provider.Ledger, provider.Users, dbPool.Close
}

// runMigrations applies all pending schema migrations before the server
// starts taking traffic.
func runMigrations(logger *slog.Logger, databaseURL string) {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		os.Exit(1)
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		os.Exit(1)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied")
	}
}
