package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amaumene/watchweek/internal/config"
	"github.com/amaumene/watchweek/internal/models"
	"github.com/amaumene/watchweek/internal/timewindow"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "watchweek",
		Short:         "Plan the week's viewing sessions and track progress",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCommand(), newWeekCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the orphan sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Wire logger, database, controllers, server and scheduler
	app, cleanup, err := initializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger := app.logger
	logger.Info().Msg("Starting Watchweek")
	logger.Info().
		Str("config_dir", filepath.Dir(cfg.DatabaseFile)).
		Dur("day_boundary_offset", cfg.DayBoundaryOffset).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 3. Start scheduler
	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer app.scheduler.Stop()

	// 4. Start HTTP server
	serverErrChan := make(chan error, 1)
	go func() {
		if err := app.server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 5. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info().Str("port", cfg.ServerPort).Msg("Watchweek is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
		if err := app.server.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Error during server shutdown")
		}
	}

	logger.Info().Msg("Watchweek stopped")
	return nil
}

func newWeekCommand() *cobra.Command {
	var (
		offset int
		at     string
	)

	cmd := &cobra.Command{
		Use:   "week [owner]",
		Short: "Print a Monday to Sunday week, and the owner's sessions in it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = t
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if len(args) == 0 {
				start, end := timewindow.New(cfg.DayBoundaryOffset).WeekWindow(now, offset)
				fmt.Fprintf(cmd.OutOrStdout(), "%s .. %s\n", start, end)
				return nil
			}

			app, cleanup, err := initializeApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			app.schedule.SetClock(func() time.Time { return now })
			week, err := app.schedule.ListWeek(cmd.Context(), args[0], offset)
			if err != nil {
				return err
			}
			printWeek(cmd.OutOrStdout(), week.Start, week.End, week.Items)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "weeks from the current one (negative for past weeks)")
	cmd.Flags().StringVar(&at, "at", "", "evaluate at this RFC3339 instant instead of now")
	return cmd
}

func printWeek(out io.Writer, start, end timewindow.Date, items []*models.ScheduleItem) {
	fmt.Fprintf(out, "%s .. %s\n", start, end)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tID\tTITLE\tSLOT\tTARGET\tDONE")
	for _, item := range items {
		slot := "-"
		if s, ok := item.Slot(); ok {
			slot = fmt.Sprint(s)
		}
		done := "no"
		if item.IsCompleted {
			done = "yes"
		}
		if item.Orphaned {
			done += " (orphaned)"
		}
		fmt.Fprintf(w, "%s %s\t%d\t%d\t%s\t%s\t%s\n",
			item.ScheduledDate, item.ScheduledDate.Weekday().String()[:3],
			item.ID, item.TitleID, slot, target(item), done)
	}
	w.Flush()
}

func target(item *models.ScheduleItem) string {
	switch {
	case item.Season != nil && item.EpisodeStart != nil && item.EpisodeEnd != nil && *item.EpisodeEnd != *item.EpisodeStart:
		return fmt.Sprintf("S%02dE%02d-E%02d", *item.Season, *item.EpisodeStart, *item.EpisodeEnd)
	case item.Season != nil && item.EpisodeStart != nil:
		return fmt.Sprintf("S%02dE%02d", *item.Season, *item.EpisodeStart)
	case item.Season != nil:
		return fmt.Sprintf("S%02d", *item.Season)
	case item.EpisodeStart != nil:
		return fmt.Sprintf("E%02d", *item.EpisodeStart)
	}
	return "-"
}
