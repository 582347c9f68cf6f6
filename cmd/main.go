package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/tabletennis-scoring/brackets"
	"github.com/Dosada05/tabletennis-scoring/config"
	"github.com/Dosada05/tabletennis-scoring/db"
	"github.com/Dosada05/tabletennis-scoring/events"
	"github.com/Dosada05/tabletennis-scoring/handlers"
	"github.com/Dosada05/tabletennis-scoring/repositories"
	api "github.com/Dosada05/tabletennis-scoring/routes"
	"github.com/Dosada05/tabletennis-scoring/services"
	"github.com/Dosada05/tabletennis-scoring/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", string(cfg.Storage)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openDocumentStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open document store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	wsHub := events.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	publishers := events.Fanout{wsHub}
	if cfg.NATSURL != "" {
		natsCfg := events.DefaultNATSConfig(cfg.NATSURL)
		natsCfg.SubjectPrefix = cfg.NATSSubjectPrefix
		natsPublisher, err := events.NewNATSPublisher(natsCfg, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := natsPublisher.Close(); err != nil {
				logger.Error("failed to drain NATS connection", slog.Any("error", err))
			}
		}()
		publishers = append(publishers, natsPublisher)
		logger.Info("NATS publisher connected", slog.String("prefix", natsCfg.SubjectPrefix))
	}

	var archiver *storage.Archiver
	if cfg.R2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewArchiver(uploader)
		logger.Info("Cloudflare R2 archiving enabled", slog.String("bucket", cfg.R2.BucketName))
	}

	clock := clockwork.NewRealClock()

	matchRepo := repositories.NewMatchRepository(store)
	teamMatchRepo := repositories.NewTeamMatchRepository(store)
	tournamentRepo := repositories.NewTournamentRepository(store)

	matchService := services.NewMatchService(matchRepo, publishers, archiver, clock, logger)
	teamMatchService := services.NewTeamMatchService(teamMatchRepo, publishers, archiver, clock, logger)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		matchRepo,
		teamMatchRepo,
		brackets.NewRoundRobinGenerator(),
		publishers,
		clock,
		logger,
	)
	logger.Info("Services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, []byte(cfg.JWTSecretKey), cfg.CORSAllowedOrigins, api.Handlers{
		Match:      handlers.NewMatchHandler(matchService),
		TeamMatch:  handlers.NewTeamMatchHandler(teamMatchService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, logger),
		Format:     handlers.NewFormatHandler(services.NewFormatService()),
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// openDocumentStore picks the backend from the configuration and makes sure
// its schema exists.
func openDocumentStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.DocumentStore, func(), error) {
	var (
		conn   *sql.DB
		driver string
		err    error
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		driver = db.DriverPostgres
		conn, err = db.Connect(cfg.DatabaseURL, cfg.DBTimeout)
	case config.StorageSQLite:
		driver = db.DriverSQLite
		conn, err = db.OpenSQLite(cfg.SQLitePath, cfg.DBTimeout)
	default:
		logger.Warn("no database configured, documents are kept in memory only")
		return repositories.NewMemoryDocumentStore(), func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	migrateCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()
	if err := db.Migrate(migrateCtx, conn, driver); err != nil {
		conn.Close()
		return nil, nil, err
	}
	logger.Info("database connection established", slog.String("driver", driver))

	closeFn := func() {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
			return
		}
		logger.Info("database connection closed")
	}
	if driver == db.DriverSQLite {
		return repositories.NewSQLiteDocumentStore(conn), closeFn, nil
	}
	return repositories.NewPostgresDocumentStore(conn), closeFn, nil
}
