package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ymichaeli/fixture-sync/internal/config"
	"github.com/ymichaeli/fixture-sync/internal/fixture"
	"github.com/ymichaeli/fixture-sync/internal/gcal"
	"github.com/ymichaeli/fixture-sync/internal/logger"
	"github.com/ymichaeli/fixture-sync/internal/reconcile"
	"github.com/ymichaeli/fixture-sync/internal/scraper"
	"github.com/ymichaeli/fixture-sync/internal/storage"
	"github.com/ymichaeli/fixture-sync/internal/syncer"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanged = 2
)

var (
	flagConfig  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture-sync",
		Short: "Keep a calendar in sync with a football club's match schedule",
		Long: `fixture-sync scrapes the club website's match listing and mirrors the
fixtures into a calendar, creating, replacing and annotating events as the
schedule changes.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "fixture-sync.yaml", "Path to the YAML config file")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCalendarsCmd())
	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newUpdateTentativeCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// loadConfig reads the config file and points the default logger at the
// configured log file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, os.Stderr)
	if cfg.LogFile != "" {
		if err := log.AttachFile(cfg.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	logger.SetDefault(log)

	return cfg, nil
}

// scrapePipeline builds the scrape-side components shared by sync and
// update-tentative.
func scrapePipeline(cfg *config.Config) (*scraper.Scraper, *fixture.Normalizer, error) {
	source, target, err := cfg.Zones()
	if err != nil {
		return nil, nil, err
	}
	return scraper.New(cfg), fixture.NewNormalizer(cfg.Months, source, target, cfg.Duration()), nil
}

func buildController(ctx context.Context, cfg *config.Config) (*syncer.Controller, error) {
	sc, norm, err := scrapePipeline(cfg)
	if err != nil {
		return nil, err
	}

	backend, err := gcal.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to calendar backend: %w", err)
	}

	store, err := storage.New(cfg.StateFile)
	if err != nil {
		return nil, err
	}

	return syncer.New(sc, norm, reconcile.New(backend, cfg), store), nil
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one scrape-and-sync cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			controller, err := buildController(ctx, cfg)
			if err != nil {
				return err
			}

			outcome, err := controller.Run(ctx)
			if err != nil {
				return err
			}

			switch outcome.State {
			case syncer.StateUnchanged:
				fmt.Println("Calendar is up to date.")
			case syncer.StateDone:
				if outcome.Result == nil {
					fmt.Println("Nothing to sync.")
					break
				}
				fmt.Printf("Synced %d fixtures (%d deleted, %d created, %d failed).\n",
					outcome.MatchCount, outcome.Result.Deleted, outcome.Result.Created, outcome.Result.Failed)
				os.Exit(ExitChanged)
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Scrape and print the upcoming schedule without touching the calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sc, norm, err := scrapePipeline(cfg)
			if err != nil {
				return err
			}

			raws, err := sc.FetchFixtures(ctx)
			if err != nil {
				return err
			}

			result := &ListingResult{CheckedAt: time.Now()}
			for i := range raws {
				fx, err := norm.Normalize(&raws[i])
				if err != nil {
					continue
				}
				result.Fixtures = append(result.Fixtures, *fx)
			}

			return WriteListing(os.Stdout, result, OutputFormat(flagFormat))
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

func newCalendarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List the calendars available to the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			backend, err := gcal.NewClient(ctx, cfg)
			if err != nil {
				return err
			}

			calendars, err := backend.ListCalendars(ctx)
			if err != nil {
				return err
			}

			fmt.Println("Available calendars:")
			fmt.Println("--------------------------------------------------")
			for _, cal := range calendars {
				primary := ""
				if cal.Primary {
					primary = " (PRIMARY)"
				}
				fmt.Printf("%s%s\n", cal.Name, primary)
				fmt.Printf("   ID: %s\n", cal.ID)
				if cal.Description != "" {
					fmt.Printf("   Description: %s\n", cal.Description)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the dedicated fixtures calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			backend, err := gcal.NewClient(ctx, cfg)
			if err != nil {
				return err
			}

			id, err := backend.CreateCalendar(ctx, cfg.CalendarName, cfg.TargetTimezone)
			if err != nil {
				return err
			}

			fmt.Printf("Created calendar %q\n", cfg.CalendarName)
			fmt.Printf("   ID: %s\n", id)
			fmt.Println("Set calendar_id in the config file to this ID to sync into it.")
			return nil
		},
	}
}

func newUpdateTentativeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-tentative",
		Short: "Annotate existing events whose kickoff time is not final",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sc, norm, err := scrapePipeline(cfg)
			if err != nil {
				return err
			}

			raws, err := sc.FetchFixtures(ctx)
			if err != nil {
				return err
			}

			fixtures := make([]fixture.Canonical, 0, len(raws))
			for i := range raws {
				fx, err := norm.Normalize(&raws[i])
				if err != nil {
					continue
				}
				fixtures = append(fixtures, *fx)
			}

			backend, err := gcal.NewClient(ctx, cfg)
			if err != nil {
				return err
			}

			updated, err := reconcile.New(backend, cfg).UpdateTentative(ctx, fixtures)
			if err != nil {
				return err
			}

			fmt.Printf("Updated %d events with the tentative-time marker.\n", updated)
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	var flagCron string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run sync cycles on a schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			spec := cfg.WatchCron
			if flagCron != "" {
				spec = flagCron
			}

			ctx := cmd.Context()
			controller, err := buildController(ctx, cfg)
			if err != nil {
				return err
			}

			runOnce := func() {
				if _, err := controller.Run(context.Background()); err != nil {
					logger.Error("Scheduled sync failed", nil, err)
				}
			}

			// First cycle runs immediately; the schedule covers the rest.
			runOnce()

			c := cron.New()
			if _, err := c.AddFunc(spec, runOnce); err != nil {
				return fmt.Errorf("invalid cron spec %q: %w", spec, err)
			}

			logger.Info("Watching for schedule changes", logger.Fields{"cron": spec})
			c.Run()
			return nil
		},
	}

	cmd.Flags().StringVar(&flagCron, "cron", "", "Cron schedule override (default from config)")
	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
