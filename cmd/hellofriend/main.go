package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/woxQAQ/hellofriend/internal/config"
	"github.com/woxQAQ/hellofriend/internal/launcher"
	"github.com/woxQAQ/hellofriend/internal/logging"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	modulePath := flag.String("module", "", "Path to the Wasm module (default hello_friend.wasm)")
	entry := flag.String("entry", "", "Exported function to call (default hellofriend)")
	printSchema := flag.Bool("manifest-schema", false, "Print the module manifest JSON Schema and exit")
	flag.Parse()

	if *printSchema {
		schema, err := launcher.ManifestSchema()
		if err != nil {
			zap.NewExample().Fatal("Failed to generate manifest schema", zap.Error(err))
		}
		fmt.Println(string(schema))
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// No logger yet.
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *modulePath != "" {
		cfg.Loader.ModulePath = *modulePath
	}
	if *entry != "" {
		cfg.Loader.EntryPoint = *entry
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("Failed to create logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hellofriend",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
		zap.String("module", cfg.Loader.ModulePath),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	l, err := launcher.New(ctx, cfg, os.Stdout, logger)
	if err != nil {
		logger.Fatal("Failed to create launcher", zap.Error(err))
	}

	runErr := l.Run(ctx)
	if err := l.Close(context.Background()); err != nil {
		logger.Warn("Failed to close launcher", zap.Error(err))
	}
	if runErr != nil {
		logger.Fatal("Module run failed", zap.Error(runErr))
	}
}
