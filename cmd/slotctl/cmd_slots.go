package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/interview-scheduler/internal/bootstrap"
	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

func newBookCmd() *cobra.Command {
	var (
		date, start, end string
		notes            string
		file             string
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book one slot, or a batch from a JSON file",
		Long: `Book one slot from flags, or every slot in a JSON array file with --file.
A batch is booked all or nothing.

Examples:
  slotctl book --date 2025-03-10 --start 09:00 --end 10:00 --notes "panel"
  slotctl book --file week.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if file != "" {
					inputs, err := readBatch(file)
					if err != nil {
						return err
					}
					saved, err := app.Manager.BookMany(ctx, inputs)
					if err != nil {
						return describe(err)
					}
					return printJSON(cmd, saved)
				}

				in := slot.CreateInput{Date: date, StartTime: start, EndTime: end}
				if notes != "" {
					in.Metadata = slot.Metadata{"notes": notes}
				}
				saved, err := app.Manager.Book(ctx, in)
				if err != nil {
					return describe(err)
				}
				return printJSON(cmd, saved)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes stored in metadata")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with [{date,startTime,endTime,metadata}]")
	return cmd
}

func newCancelCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "cancel [id]",
		Short: "Cancel a slot by id, or every slot of --date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && date == "" {
				return fmt.Errorf("cancel needs an id or --date")
			}

			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if len(args) == 1 {
					if err := app.Manager.CancelOrThrow(ctx, args[0]); err != nil {
						return describe(err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s\n", args[0])
					return nil
				}

				n, err := app.Manager.CancelByDate(ctx, date)
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cancelled %d slot(s) on %s\n", n, date)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Cancel every slot on this date")
	return cmd
}

func newListCmd() *cobra.Command {
	var (
		date, from, to string
		limit, offset  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List slots by date, date range or page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				switch {
				case date != "":
					slots, err := app.Manager.GetByDate(ctx, date)
					if err != nil {
						return describe(err)
					}
					return printJSON(cmd, slots)
				case from != "" && to != "":
					slots, err := app.Manager.GetByDateRange(ctx, from, to)
					if err != nil {
						return describe(err)
					}
					return printJSON(cmd, slots)
				}

				page, err := app.Manager.GetPage(ctx, slot.QueryOptions{
					StartDate: from,
					EndDate:   to,
					Limit:     limit,
					Offset:    offset,
				})
				if err != nil {
					return describe(err)
				}
				return printJSON(cmd, page)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Only this date")
	cmd.Flags().StringVar(&from, "from", "", "Range start date (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "Range end date (inclusive)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size (0 = no limit)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func newConflictsCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Report stored slots that overlap on one date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				conflicts, err := app.Manager.FindConflicts(ctx, date)
				if err != nil {
					return describe(err)
				}
				return printJSON(cmd, conflicts)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to audit (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// ------------------------------------------------------
// Helpers
// ------------------------------------------------------

func readBatch(path string) ([]slot.CreateInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	var rows []struct {
		Date      string        `json:"date"`
		StartTime string        `json:"startTime"`
		EndTime   string        `json:"endTime"`
		Metadata  slot.Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}

	inputs := make([]slot.CreateInput, 0, len(rows))
	for _, r := range rows {
		inputs = append(inputs, slot.CreateInput{
			Date:      r.Date,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			Metadata:  r.Metadata,
		})
	}
	return inputs, nil
}

// describe expands a conflict into the colliding ranges so the operator
// sees alternatives without a second command.
func describe(err error) error {
	ce, ok := slot.AsConflict(err)
	if !ok {
		return err
	}

	msg := ce.Message
	for _, d := range ce.Details() {
		msg += fmt.Sprintf("\n  %s %s-%s (%s) overlaps %d min",
			d.Slot2.Date, d.Slot2.StartTime, d.Slot2.EndTime, d.Slot2.ID, d.OverlapMinutes)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
