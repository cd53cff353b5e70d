package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/interview-scheduler/internal/bootstrap"
	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

func availabilityFlags(cmd *cobra.Command, opts *slot.AvailabilityOptions) {
	cmd.Flags().IntVar(&opts.StartHour, "start-hour", 0, "Window start hour (0-23)")
	cmd.Flags().IntVar(&opts.EndHour, "end-hour", 24, "Window end hour (1-24)")
	cmd.Flags().IntVar(&opts.MinDurationIntervals, "min-intervals", 1, "Minimum window length in 30-minute intervals")
}

func newFreeCmd() *cobra.Command {
	var (
		date string
		opts slot.AvailabilityOptions
	)

	cmd := &cobra.Command{
		Use:   "free",
		Short: "Show the free windows of one date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				windows, err := app.Manager.GetAvailableSlots(ctx, date, opts)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				total := 0
				for _, w := range windows {
					fmt.Fprintf(out, "%s-%s\t%d min\n", w.StartTime, w.EndTime, w.DurationMinutes())
					total += w.DurationMinutes()
				}
				fmt.Fprintf(out, "total\t%d min\n", total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	availabilityFlags(cmd, &opts)
	return cmd
}

func newStatsCmd() *cobra.Command {
	var (
		date, from, to string
		opts           slot.AvailabilityOptions
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Daily slot counts and minutes for a range, or one date's totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if date != "" {
					stats, err := app.Manager.StatsForDate(ctx, date, opts)
					if err != nil {
						return err
					}
					return printJSON(cmd, stats)
				}

				stats, err := app.Manager.DailyStats(ctx, from, to)
				if err != nil {
					return err
				}
				return printJSON(cmd, stats)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Totals for this date")
	cmd.Flags().StringVar(&from, "from", "", "Range start date")
	cmd.Flags().StringVar(&to, "to", "", "Range end date")
	availabilityFlags(cmd, &opts)
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the storage schema (gorm host tables or the postgres slots table)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", app.Config.Storage)
				return nil
			})
		},
	}
}
