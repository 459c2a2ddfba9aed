package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	_ "schemaview/internal/db/extractors"
	"schemaview/internal/logger"
	"schemaview/pkg/config"
)

type configKey struct{}

// appConfig returns the configuration loaded by the root command.
func appConfig(ctx context.Context) config.AppConfig {
	if cfg, ok := ctx.Value(configKey{}).(config.AppConfig); ok {
		return cfg
	}
	return config.Default()
}

func main() {
	app := &cli.Command{
		Name:  "schemaview",
		Usage: "Browse relational schemas as table families and query their rows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config YAML",
				Value:   "schemaview.yaml",
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "console or json (overrides config)",
			},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			serveCommand(),
			extractCommand(),
			tablesCommand(),
			itemsCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := app.Run(ctx, os.Args)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("config: %w", err)
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if f := cmd.String("log-format"); f != "" {
		cfg.Logging.Format = f
	}
	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return ctx, err
	}
	logger.Debug("config file %s", cmd.String("config"))
	return context.WithValue(ctx, configKey{}, cfg), nil
}
