package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tourney/config"
	"github.com/Dosada05/tourney/db"
	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withDB(func(dbConn *sql.DB, _ *slog.Logger) error {
						migrator, err := db.NewMigrator(dbConn)
						if err != nil {
							return err
						}
						return migrator.Init(c.Context)
					})
				},
			},
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					return withDB(func(dbConn *sql.DB, logger *slog.Logger) error {
						return runMigrations(c.Context, dbConn, logger)
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withDB(func(dbConn *sql.DB, _ *slog.Logger) error {
						group, err := db.Rollback(c.Context, dbConn)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Fprintln(c.App.Writer, "no groups to roll back")
							return nil
						}
						fmt.Fprintf(c.App.Writer, "rolled back %s\n", group)
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withDB(func(dbConn *sql.DB, _ *slog.Logger) error {
						ms, err := db.MigrationStatus(c.Context, dbConn)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "migrations: %s\n", ms)
						fmt.Fprintf(c.App.Writer, "applied: %s\n", ms.Applied())
						fmt.Fprintf(c.App.Writer, "unapplied: %s\n", ms.Unapplied())
						return nil
					})
				},
			},
		},
	}
}

// withDB открывает соединение по конфигурации и закрывает его после fn.
func withDB(fn func(*sql.DB, *slog.Logger) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	dbConn, err := connectDB(cfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()
	return fn(dbConn, logger)
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}
	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DatabaseTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return dbConn, nil
}
