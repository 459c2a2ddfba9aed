package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"schemaview/internal/db"
	"schemaview/internal/logger"
	"schemaview/internal/server"
	"schemaview/pkg/config"
)

// databaseFlags select the database for serve and extract.
func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "driver",
			Usage: "db driver override (postgres, mysql, sqlite, sqlserver, godror)",
		},
		&cli.StringFlag{
			Name:  "dsn",
			Usage: "dsn override",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "db timeout in seconds (overrides config)",
		},
	}
}

// resolveDatabase applies the flag overrides to the configured database.
func resolveDatabase(cmd *cli.Command, cfg config.AppConfig) (driver, dsn string, timeout int, err error) {
	dbCfg := cfg.Database
	if cmd.String("driver") != "" && cmd.String("dsn") != "" {
		dbCfg = config.DBConfig{Type: cmd.String("driver"), DSN: cmd.String("dsn")}
	}
	if dbCfg.Type == "" {
		return "", "", 0, fmt.Errorf("no database configured; set database.type or pass --driver and --dsn")
	}
	driver, dsn, err = config.BuildDriverAndDSN(dbCfg)
	if err != nil {
		return "", "", 0, err
	}
	timeout = cmp.Or(cmd.Int("timeout"), cfg.Database.Timeout, 10)
	return driver, dsn, timeout, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a database as a JSON schema service",
		Flags: append(databaseFlags(),
			&cli.IntFlag{
				Name:  "port",
				Usage: "http port (overrides config)",
			},
		),
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := appConfig(ctx)
	driver, dsn, timeout, err := resolveDatabase(cmd, cfg)
	if err != nil {
		return err
	}

	src, err := db.Open(driver, dsn, timeout, cfg.Polymorphic)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	defer src.Close()

	port := cmp.Or(cmd.Int("port"), cfg.Server.Port, 8080)
	logger.Info("registered dialects: %v", db.RegisteredDialects())
	return server.New(src).Run(ctx, fmt.Sprintf(":%d", port))
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:   "extract",
		Usage:  "Print the table schemas of a database as JSON",
		Flags:  databaseFlags(),
		Action: runExtract,
	}
}

func runExtract(ctx context.Context, cmd *cli.Command) error {
	cfg := appConfig(ctx)
	driver, dsn, timeout, err := resolveDatabase(cmd, cfg)
	if err != nil {
		return err
	}
	schemas, err := db.ConnectAndExtract(driver, dsn, timeout, cfg.Polymorphic)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(schemas)
}
