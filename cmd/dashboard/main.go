package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/config"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/dashboard"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/feed"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/model"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/realtime"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/server"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/table"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/dashboard.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting dashboard",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load .env before reading config so ${SUPABASE_URL} expansion works
	// in local development too.
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"table", cfg.Supabase.Table,
		"feed_url", cfg.Feed.BaseURL,
		"poll_interval", cfg.Feed.PollInterval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Data source clients
	tableClient := table.NewClient(
		cfg.Supabase.URL,
		cfg.Supabase.AnonKey,
		cfg.Supabase.Table,
		table.WithLogger(logger),
		table.WithTimeout(cfg.Feed.Timeout),
	)

	feedClient := feed.NewClient(
		cfg.Feed.BaseURL,
		feed.WithLogger(logger),
		feed.WithTimeout(cfg.Feed.Timeout),
		feed.WithRetries(cfg.Feed.MaxRetries, time.Second),
	)

	feedSource := dashboard.FeedSourceFunc(func(ctx context.Context) ([]model.PriceRecord, error) {
		return feedClient.TopMarkets(ctx, cfg.Feed.Currency, cfg.Feed.PageSize)
	})

	// Refresh coordinator
	coord := dashboard.New(dashboard.Config{
		PollInterval: cfg.Feed.PollInterval,
		PageSize:     cfg.Feed.PageSize,
		FetchTimeout: cfg.Feed.Timeout,
	}, tableClient, feedSource, logger)

	if err := coord.Start(ctx); err != nil {
		logger.Error("failed to start coordinator", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		coord.Stop(stopCtx)
	}()

	// Change-notification subscription. A failed handshake is tolerated: the
	// dashboard keeps working from the poll path alone.
	sub := realtime.NewClient(realtime.Config{
		URL:    cfg.Supabase.URL,
		APIKey: cfg.Supabase.AnonKey,
		Table:  cfg.Supabase.Table,
	}, logger)

	if err := sub.Connect(ctx); err != nil {
		logger.Warn("realtime subscription unavailable, running poll-only", "error", err)
	} else {
		defer sub.Close()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-sub.Events():
					if !ok {
						return
					}
					logger.Debug("table change notification", "type", ev.Type, "table", ev.Table)
					coord.Notify()
				}
			}
		}()
	}

	// HTTP surface for rendering clients
	srv := server.New(server.Config{
		Port:         cfg.Server.Port,
		AllowOrigins: cfg.Server.AllowOrigins,
	}, coord, sub.Connected, logger)

	var g errgroup.Group
	g.Go(srv.Run)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("dashboard stopped")
}
