package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/config"
	"github.com/Dosada05/tourney/db"
	"github.com/Dosada05/tourney/handlers"
	"github.com/Dosada05/tourney/metrics"
	"github.com/Dosada05/tourney/repositories"
	"github.com/Dosada05/tourney/routes"
	"github.com/Dosada05/tourney/services"
	"github.com/Dosada05/tourney/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before serving (postgres only)"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(c.Context, cfg, logger, c.Bool("migrate"))
		},
	}
}

func serve(parent context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("storage", cfg.StorageDriver))

	store, closeStore, err := openStore(ctx, cfg, logger, migrate)
	if err != nil {
		return err
	}
	defer closeStore()

	// Инициализация загрузчика архивов (Cloudflare R2), если он настроен
	var archiver services.BracketArchiver
	if cfg.R2().Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, cfg.R2())
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = storage.NewBracketArchiver(uploader)
		logger.Info("Cloudflare R2 bracket archive enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("bracket archive disabled: R2 is not configured")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)

	bracketService := services.NewBracketService(store, nil, logger)
	matchService := services.NewMatchService(store, wsHub, m, logger)
	tournamentService := services.NewTournamentService(store, bracketService, wsHub, archiver, m, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router,
		routes.Options{
			JWTSecret:      []byte(cfg.JWTSecretKey),
			AllowedOrigins: cfg.CORSAllowedOrigin,
			Metrics:        reg,
			Logger:         logger,
		},
		handlers.NewTournamentHandler(tournamentService, bracketService),
		handlers.NewMatchHandler(matchService, tournamentService),
		handlers.NewBracketHandler(bracketService),
		handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigin, logger),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return err
	}
	logger.Info("server shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (repositories.Store, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage: data is lost on restart")
		return repositories.NewMemoryStore(), func() {}, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DatabaseTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")

	if migrate {
		if err := runMigrations(ctx, dbConn, logger); err != nil {
			_ = dbConn.Close()
			return nil, nil, err
		}
	}

	closeFn := func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}
	return repositories.NewPostgresStore(dbConn), closeFn, nil
}

func runMigrations(ctx context.Context, dbConn *sql.DB, logger *slog.Logger) error {
	group, err := db.Migrate(ctx, dbConn)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if group.IsZero() {
		logger.Info("no new migrations to apply")
		return nil
	}
	logger.Info("migrations applied", slog.String("group", group.String()))
	return nil
}
