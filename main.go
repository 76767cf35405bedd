package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"consultflow-backend/internal/cache"
	"consultflow-backend/internal/config"
	"consultflow-backend/internal/drilldown"
	"consultflow-backend/internal/loader"
	"consultflow-backend/internal/logger"
	"consultflow-backend/internal/reportapi"
	"consultflow-backend/internal/store"
)

func main() {
	// Check for migrate command
	migrateCmd := flag.Bool("migrate", false, "Run database migration and seed the demo company")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo ledger entries and trial balances (idempotent)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	ctx := context.Background()

	if *migrateCmd {
		if err := setupDatabase(ctx, cfg.DatabaseURL, log); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		log.Info().Msg("Migration completed successfully")
		os.Exit(0)
	}
	if *seedDemoCmd {
		db, err := initDB(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		if err := seedDemoData(ctx, db); err != nil {
			db.Close()
			log.Fatal().Err(err).Msg("Seeding demo data failed")
		}
		db.Close()
		log.Info().Msg("Demo data seeded")
		os.Exit(0)
	}

	// Initialize database
	db, err := initDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()
	repo := store.New(db)

	// Initialize Redis
	var drillCache cache.Store
	redisClient, err := initRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis, continuing with in-memory cache")
		drillCache = cache.NewMemory()
	} else {
		defer redisClient.Close()
		drillCache = cache.NewRedis(redisClient)
	}

	var remote loader.RemoteSource = repo
	if cfg.Reporting.Mode == config.ModeAPI {
		remote = reportapi.NewClient(cfg.Reporting.APIURL, cfg.Reporting.APITimeout)
	}
	log.Info().Str("mode", cfg.Reporting.Mode).Msg("Reporting backing mode configured")

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(&api{
		loader: loader.New(repo, remote, log),
		drill: drilldown.New(repo, drillCache, drilldown.Options{
			CacheTTL: cfg.DrillDown.CacheTTL,
			MaxDepth: cfg.DrillDown.MaxDepth,
		}, log),
		accounts:  repo,
		companies: repo,
		db:        repo,
		currency:  cfg.Reporting.DefaultCurrency,
		log:       log,
		now:       time.Now,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
