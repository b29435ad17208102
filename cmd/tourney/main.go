package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Dosada05/tourney/config"
	"github.com/urfave/cli/v2"
)

//go:generate swag init --dir ../../ --generalInfo cmd/tourney/main.go --output ../../docs --outputTypes go

// @title Tourney API
// @version 1.0
// @description Single-elimination brackets: build, record results, crown a champion.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tourney",
		Usage: "single-elimination tournament bracket service",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			previewCommand(),
		},
	}
}

// loadConfig загружает конфигурацию и строит логгер по LOG_LEVEL.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
