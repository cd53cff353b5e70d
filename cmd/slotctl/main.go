package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/interview-scheduler/internal/bootstrap"
	"github.com/BruksfildServices01/interview-scheduler/internal/config"
	"github.com/BruksfildServices01/interview-scheduler/internal/logging"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slotctl",
		Short: "Operate the interview availability store",
		Long: `slotctl books, lists and cancels availability slots against the storage
backend configured in the environment (SLOTS_STORAGE, DATABASE_URL, REDIS_ADDR...).

Examples:
  slotctl book --date 2025-03-10 --start 09:00 --end 10:00
  slotctl list --date 2025-03-10
  slotctl free --date 2025-03-10 --start-hour 9 --end-hour 18
  slotctl migrate`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level to stderr")

	root.AddCommand(
		newBookCmd(),
		newCancelCmd(),
		newListCmd(),
		newFreeCmd(),
		newConflictsCmd(),
		newStatsCmd(),
		newMigrateCmd(),
	)
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// withApp builds the engine from the environment for one command run.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg := config.Load()

	log := zerolog.Nop()
	if verbose {
		log = logging.SetupWithWriter("development", cmd.ErrOrStderr())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
