// fedsync-server runs the synchronization service: the HTTP API, the
// SQLite-backed document store, and the periodic background sync.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/mkarlsen/fedsync/internal/aggregate"
	"github.com/mkarlsen/fedsync/internal/config"
	"github.com/mkarlsen/fedsync/internal/logger"
	"github.com/mkarlsen/fedsync/internal/scrape"
	"github.com/mkarlsen/fedsync/internal/server"
	"github.com/mkarlsen/fedsync/internal/store/sqlite"
	"github.com/mkarlsen/fedsync/internal/sync"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "fedsync-server",
		Short:        "External calendar sync service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("preparing database: %w", err)
	}

	scraper, err := scrape.New(scrape.Options{
		BaseURL:           cfg.Scrape.BaseURL,
		UserAgent:         cfg.Scrape.UserAgent,
		DetailConcurrency: cfg.Scrape.DetailConcurrency,
		Logger:            log,
	})
	if err != nil {
		return fmt.Errorf("creating scraper: %w", err)
	}

	agg := aggregate.New(scraper, cfg.Scrape.FetchConcurrency, log)
	svc := sync.New(db, agg, nil, log)

	// The cron tick asks the gate; runs only happen when due, so a
	// tight schedule is cheap.
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.Sync.Schedule, func() {
		svc.RunSync(context.Background(), false)
	}); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", cfg.Sync.Schedule, err)
	}
	sched.Start()
	defer sched.Stop()

	srv := server.NewServer(cfg.Listen, svc)
	log.Info("fedsync-server listening", "addr", cfg.Listen, "db", cfg.Database.Path, "schedule", cfg.Sync.Schedule)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
