package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woxQAQ/hellofriend/internal/blog"
	"github.com/woxQAQ/hellofriend/internal/config"
	"github.com/woxQAQ/hellofriend/internal/logging"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	addr := flag.String("addr", "", "Listen address (default 127.0.0.1:8080)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *addr != "" {
		cfg.Blog.Addr = *addr
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("Failed to create logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	server := blog.NewServer(cfg.Blog, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	if err := server.Listen(); err != nil {
		logger.Fatal("Blog server error", zap.Error(err))
	}

	logger.Info("Server shutdown complete")
}
