package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prediction-league/config"
	"prediction-league/database"
	"prediction-league/handlers"
	"prediction-league/logging"
	"prediction-league/services"

	"github.com/itbasis/go-clock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}

	var logFile *os.File
	if cfg.ShouldLogToFile() {
		logFile, err = logging.OpenLogFile(cfg.GetLogDir(), cfg.Logging.Prefix)
		if err != nil {
			logging.Warnf("File logging disabled: %v", err)
		} else {
			defer logFile.Close()
		}
	}
	if logFile != nil {
		logging.Configure(cfg.ToLoggingConfig(logFile))
	} else {
		logging.Configure(cfg.ToLoggingConfig(nil))
	}
	cfg.LogConfiguration()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, driver, closeStore := openStore(ctx, cfg)
	defer closeStore()

	leagueOpts, err := cfg.ToLeagueOptions()
	if err != nil {
		logging.Fatalf("Failed to load league seed: %v", err)
	}

	clk := clock.New()
	leagueService := services.NewLeagueService(store, clk, leagueOpts)
	authService := services.NewAuthService(cfg.Auth.AdminPassword, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk)
	if !authService.HasAdminPassword() {
		logging.Warnf("ADMIN_PASSWORD is not set, admin routes are unusable")
	}

	if cfg.IsBackupEnabled() {
		backupService := services.NewBackupService(store, clk, cfg.ToBackupOptions())
		if err := backupService.StartScheduler(ctx, cfg.Backup.BackupTime, cfg.Backup.RetentionDays); err != nil {
			logging.Errorf("Backup scheduler not started: %v", err)
		}
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		League: leagueService,
		Auth:   authService,
		Store:  store,
		Health: handlers.HealthInfo{
			StoreDriver:     driver,
			LeagueID:        leagueService.LeagueID(),
			AdminConfigured: authService.HasAdminPassword(),
			JWTConfigured:   cfg.Auth.JWTSecret != "",
			SeedFile:        cfg.League.SeedFile,
			LockSubmitted:   cfg.League.LockSubmittedWeeks,
		},
	})

	server := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logging.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Server forced to shutdown: %v", err)
	}
	logging.Info("Server exited")
}

// openStore connects the configured document store. When the database cannot
// be reached the server keeps running on the in-memory store.
func openStore(ctx context.Context, cfg *config.Config) (services.DocumentStore, string, func()) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		db, err := database.NewMongoConnection(ctx, cfg.ToDatabaseConfig())
		if err != nil {
			logging.Errorf("Database connection failed: %v", err)
			break
		}
		return database.NewMongoLeagueRepository(db), config.DriverMongo, func() { _ = db.Close() }

	case config.DriverPostgres:
		repo, err := database.NewPostgresLeagueRepository(ctx, cfg.Database.PostgresURL)
		if err != nil {
			logging.Errorf("Database connection failed: %v", err)
			break
		}
		return repo, config.DriverPostgres, repo.Close

	case config.DriverMemory:
		return services.NewMemoryDocumentStore(), config.DriverMemory, func() {}
	}

	logging.Warnf("Continuing with the in-memory store, league data will not survive a restart")
	return services.NewMemoryDocumentStore(), config.DriverMemory, func() {}
}
