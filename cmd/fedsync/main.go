// fedsync is the operator CLI: run or check a sync and manage the sync
// configuration against a local database, without the server running.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/fedsync/internal/aggregate"
	"github.com/mkarlsen/fedsync/internal/logger"
	"github.com/mkarlsen/fedsync/internal/scrape"
	"github.com/mkarlsen/fedsync/internal/store/sqlite"
	"github.com/mkarlsen/fedsync/internal/sync"
)

type globalFlags struct {
	DBPath  string
	BaseURL string
	Level   string
}

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	gf := &globalFlags{}

	root := &cobra.Command{
		Use:          "fedsync",
		Short:        "External calendar sync CLI",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&gf.DBPath, "db", "fedsync.db", "path to the SQLite database")
	root.PersistentFlags().StringVar(&gf.BaseURL, "base-url", "", "override the upstream calendar base URL")
	root.PersistentFlags().StringVar(&gf.Level, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(
		newSyncCmd(gf),
		newCheckCmd(gf),
		newStatusCmd(gf),
		newConfigCmd(gf),
	)
	return root
}

// openService wires a full pipeline against the local database. The
// returned cleanup closes the database.
func openService(gf *globalFlags) (*sync.Service, func(), error) {
	log := logger.New(logger.Config{Level: gf.Level, Format: "text"})

	db, err := sqlite.New(gf.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("preparing database: %w", err)
	}

	scraper, err := scrape.New(scrape.Options{BaseURL: gf.BaseURL, Logger: log})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("creating scraper: %w", err)
	}

	agg := aggregate.New(scraper, 0, log)
	svc := sync.New(db, agg, nil, log)
	return svc, func() { _ = db.Close() }, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newSyncCmd(gf *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a sync now",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(gf)
			if err != nil {
				return err
			}
			defer cleanup()

			res := svc.RunSync(cmd.Context(), force)
			if err := printJSON(res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("sync did not run: %s", res.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "run even when disabled or up to date")
	return cmd
}

func newCheckCmd(gf *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether a sync is due",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(gf)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CheckSyncNeeded(cmd.Context(), force)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "evaluate the gate as a forced run would")
	return cmd
}

func newStatusCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest sync outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(gf)
			if err != nil {
				return err
			}
			defer cleanup()

			meta, err := svc.Status(cmd.Context())
			if err != nil {
				return err
			}
			if meta == nil {
				fmt.Println("no sync has run yet")
				return nil
			}
			return printJSON(meta)
		},
	}
}

func newConfigCmd(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the sync configuration",
	}
	cmd.AddCommand(newConfigSetCmd(gf), newConfigShowCmd(gf))
	return cmd
}

func newConfigSetCmd(gf *globalFlags) *cobra.Command {
	params := sync.UpdateConfigParams{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save the sync configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(gf)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg, err := svc.UpdateConfig(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	}
	cmd.Flags().StringSliceVar(&params.Disciplines, "disciplines", nil, "discipline slugs to also scrape filtered pages for")
	cmd.Flags().IntVar(&params.YearsAhead, "years-ahead", 2, "years beyond the current one to scrape (1-5)")
	cmd.Flags().IntVar(&params.SyncIntervalDays, "interval-days", 7, "minimum days between scheduled runs (1-30)")
	cmd.Flags().BoolVar(&params.IsActive, "active", true, "enable scheduled runs")
	return cmd
}

func newConfigShowCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored sync configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(gf)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CheckSyncNeeded(cmd.Context(), false)
			if err != nil {
				return err
			}
			if res.Config == nil {
				fmt.Println("sync has never been configured")
				return nil
			}
			return printJSON(res.Config)
		},
	}
}
