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

	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/repair-desk/internal/adapters/primary/http"
	mw "github.com/lorrc/repair-desk/internal/adapters/primary/http/middleware"
	"github.com/lorrc/repair-desk/internal/adapters/secondary/memory"
	"github.com/lorrc/repair-desk/internal/adapters/secondary/postgres"
	presetredis "github.com/lorrc/repair-desk/internal/adapters/secondary/redis"
	"github.com/lorrc/repair-desk/internal/adapters/secondary/sqlite"
	"github.com/lorrc/repair-desk/internal/auth"
	"github.com/lorrc/repair-desk/internal/config"
	"github.com/lorrc/repair-desk/internal/core/analytics"
	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/lorrc/repair-desk/internal/core/ports"
	"github.com/lorrc/repair-desk/internal/core/services"
	"github.com/lorrc/repair-desk/internal/infrastructure/logging"
)

// rosterStore is a technician repository that can also be seeded.
type rosterStore interface {
	ports.TechnicianRepository
	SaveTechnician(ctx context.Context, tech domain.Technician) error
}

// store bundles the ticket/roster adapters chosen by DB_DRIVER.
type store struct {
	tickets ports.TicketRepository
	roster  rosterStore
	health  httpAdapter.HealthChecker
	close   func()
}

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	ctx := context.Background()

	// 3. Ticket store and roster
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open ticket store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	if err := seedRoster(ctx, st.roster, cfg.TechnicianSeeds()); err != nil {
		logger.Error("failed to seed technician roster", "error", err)
		os.Exit(1)
	}

	// 4. Preset store: Redis when configured, otherwise in-process
	var presetRepo ports.PresetRepository
	var redisRepo *presetredis.PresetRepository
	if cfg.Redis.Addr != "" {
		redisRepo, err = presetredis.New(ctx,
			presetredis.WithAddress(cfg.Redis.Addr),
			presetredis.WithPassword(cfg.Redis.Password),
			presetredis.WithDB(cfg.Redis.DB),
			presetredis.WithKey(cfg.Redis.PresetKey),
			presetredis.WithLocation(cfg.Location()),
		)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisRepo.Close()
		presetRepo = redisRepo
		logger.Info("redis preset store connected", "addr", cfg.Redis.Addr)
	} else {
		presetRepo = memory.NewPresetRepository()
		logger.Warn("REDIS_ADDR not set, report presets are kept in memory")
	}

	// 5. Security and rate limiting
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	var generalRateLimiter *mw.RateLimiter
	var bulkRateLimiter *mw.RateLimitByKey
	if cfg.RateLimit.Enabled {
		rlCfg := mw.DefaultRateLimiterConfig()
		rlCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rlCfg.BurstSize = cfg.RateLimit.BurstSize
		generalRateLimiter = mw.NewRateLimiter(rlCfg)
		defer generalRateLimiter.Stop()
		bulkRateLimiter = mw.NewRateLimitByKey(cfg.RateLimit.BulkRPS, cfg.RateLimit.BulkBurst)
		defer bulkRateLimiter.Stop()
	}

	// 6. Dependency Injection (Wiring the Hexagon)
	loc := cfg.Location()
	aggregator := analytics.NewAggregator(
		analytics.WithLocation(loc),
		analytics.WithNoDataLabel(cfg.Report.NoDataLabel),
	)

	authzService := services.NewAuthorizationService()
	ticketService := services.NewTicketService(st.tickets, st.roster, authzService)
	reportService := services.NewReportService(st.tickets, st.roster, authzService, aggregator)
	presetService := services.NewPresetService(presetRepo, authzService)

	errorHandler := httpAdapter.NewErrorHandler(logger)
	healthHandler := httpAdapter.NewHealthHandler(st.health, cfg.App.Version)
	if redisRepo != nil {
		healthHandler.WithCheck("redis", redisRepo)
	}

	// 7. Setup Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:          logger,
		TokenManager:    tokenManager,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		TrustedProxies:  cfg.TrustedProxyPrefixes(),
		RateLimiter:     generalRateLimiter,
		BulkRateLimiter: bulkRateLimiter,
		Health:          healthHandler,
		Tickets:         httpAdapter.NewTicketHandler(ticketService, errorHandler, loc, logger),
		Technicians:     httpAdapter.NewTechnicianHandler(ticketService, errorHandler, logger),
		Reports:         httpAdapter.NewReportHandler(reportService, errorHandler, loc, logger),
		Presets:         httpAdapter.NewPresetHandler(presetService, errorHandler, loc, logger),
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return
	}

	logger.Info("server shutdown complete")
}

// openStore connects the configured ticket store and applies its schema.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx,
			sqlite.WithDataSource(cfg.Database.SQLitePath),
			sqlite.WithMaxOpenConns(cfg.Database.MaxOpenConns),
			sqlite.WithConnMaxLifetime(cfg.Database.ConnMaxLifetime),
			sqlite.WithRetry(3, time.Second),
		)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite ticket store opened", "path", cfg.Database.SQLitePath)
		return &store{
			tickets: sqlite.NewTicketRepository(db),
			roster:  sqlite.NewTechnicianRepository(db),
			health:  httpAdapter.HealthCheckFunc(db.PingContext),
			close:   func() { _ = db.Close() },
		}, nil

	default:
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL); err != nil {
				return nil, err
			}
			logger.Info("database migrations applied", "source", cfg.Database.MigrationsPath)
		}

		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("parse database URL: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
		poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
		poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping: %w", err)
		}
		logger.Info("database connection established")

		return &store{
			tickets: postgres.NewTicketRepository(pool, postgres.NewTransactionManager(pool)),
			roster:  postgres.NewTechnicianRepository(pool),
			health:  pool,
			close:   pool.Close,
		}, nil
	}
}

// seedRoster upserts the configured technicians.
func seedRoster(ctx context.Context, roster rosterStore, seeds []domain.Technician) error {
	for _, tech := range seeds {
		if err := roster.SaveTechnician(ctx, tech); err != nil {
			return fmt.Errorf("seed technician %s: %w", tech.ID, err)
		}
	}
	return nil
}
