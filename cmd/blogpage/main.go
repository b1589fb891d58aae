package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/woxQAQ/hellofriend/internal/config"
	"github.com/woxQAQ/hellofriend/internal/logging"
	"github.com/woxQAQ/hellofriend/internal/page"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	pageURL := flag.String("url", "", "Page URL the post is fetched relative to")
	clicks := flag.Int("clicks", 1, "Number of body clicks to simulate")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *pageURL != "" {
		cfg.Page.URL = *pageURL
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("Failed to create logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	fetcher, err := page.NewHTTPFetcher(cfg.Page.URL, cfg.Page.PostPath, nil)
	if err != nil {
		logger.Fatal("Invalid page configuration", zap.Error(err))
	}

	p, err := page.New(page.NewDocument(logger, page.ElementIDs...), fetcher, logger,
		page.WithFetchTimeout(cfg.Page.Timeout()))
	if err != nil {
		logger.Fatal("Failed to build page", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("Simulating clicks",
		zap.String("post_url", fetcher.URL()),
		zap.Int("clicks", *clicks),
	)

	for i := 0; i < *clicks && ctx.Err() == nil; i++ {
		p.Click(ctx)

		snap := p.Snapshot()
		fmt.Printf("click %d\n", i+1)
		for _, id := range page.ElementIDs {
			fmt.Printf("  %-12s %q\n", id, snap[id])
		}
	}
}
