// Command apiserver serves the explanation HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
)

// Injected via ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("apiserver", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file (default: environment only)")
	envFile := fs.String("env-file", ".env", "dotenv file loaded before configuration")
	port := fs.Int("port", 0, "HTTP port (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Values already in the environment take precedence over the file.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		return err
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	logger.Info("starting hypocal API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Address()),
		logging.String("default_variant", cfg.Engine.DefaultVariant),
		logging.Bool("redis", cfg.Redis.Enabled),
		logging.Bool("kafka", cfg.Kafka.Enabled),
	)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if *configPath != "" {
		watchLogLevel(*configPath, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	return a.server.Shutdown(context.Background())
}

// watchLogLevel applies log.level changes from the config file at runtime.
func watchLogLevel(path string, logger logging.Logger) {
	setter, ok := logger.(logging.LevelSetter)
	if !ok {
		return
	}
	err := config.Watch(path,
		func(cfg *config.Config) {
			setter.SetLevel(cfg.Log.Level)
			logger.Info("log level updated", logging.String("level", cfg.Log.Level))
		},
		func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		},
	)
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
