package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tandem/internal/app"
	"tandem/internal/categorize"
	"tandem/internal/config"
	"tandem/internal/meals"
	"tandem/internal/shopping"
)

var (
	// Global flags
	verbose bool
	timeout time.Duration

	logger *zap.Logger
	cfg    *config.Config
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tandemctl",
		Short:         "Operations tool for the tandem household backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}

			logConfig := zap.NewProductionConfig()
			if verbose {
				logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err = logConfig.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newShoppingListCmd())
	rootCmd.AddCommand(newRecategorizeCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withStores opens the configured database for the length of one command.
func withStores(fn func(ctx context.Context, stores *app.Stores) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	return fn(ctx, stores)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Connects with DB_DRIVER and applies every schema statement. Safe to run repeatedly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(func(ctx context.Context, stores *app.Stores) error {
				fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", cfg.DBDriver)
				return nil
			})
		},
	}
}

func newShoppingListCmd() *cobra.Command {
	var (
		householdID string
		week        string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "shopping-list",
		Short: "Print a household's shopping list for one week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, err := meals.ParseWeek(week, time.Now())
			if err != nil {
				return fmt.Errorf("--week must be YYYY-MM-DD: %w", err)
			}

			return withStores(func(ctx context.Context, stores *app.Stores) error {
				service := shopping.NewService(stores.Meals, stores.Pantry, nil, logger)
				items, err := service.BuildList(ctx, householdID, weekStart)
				if err != nil {
					return err
				}
				return printList(cmd, weekStart, items, asJSON)
			})
		},
	}

	cmd.Flags().StringVar(&householdID, "household", "", "Household id (required)")
	cmd.Flags().StringVar(&week, "week", "", "Any date in the week, YYYY-MM-DD (default: this week)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	_ = cmd.MarkFlagRequired("household")
	return cmd
}

func printList(cmd *cobra.Command, weekStart time.Time, items []shopping.Item, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"week_start": meals.FormatDate(weekStart),
			"items":      items,
		})
	}

	fmt.Fprintf(out, "week of %s: %d item(s)\n", meals.FormatDate(weekStart), len(items))
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tQUANTITY\tIN PANTRY")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%t\n", item.Name, item.Quantity, item.InPantry)
	}
	return w.Flush()
}

func newRecategorizeCmd() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "recategorize",
		Short: "Run one repair batch over rows stored with the fallback placement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(func(ctx context.Context, stores *app.Stores) error {
				categorizer, err := app.NewCategorizer(ctx, cfg, logger)
				if err != nil {
					return err
				}

				if batch <= 0 {
					batch = cfg.Engine.WorkerBatch
				}
				worker := categorize.NewWorker(stores.Pantry, categorizer, batch, cfg.Engine.WorkerInterval, nil, logger)

				res, err := worker.ProcessBatch(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "claimed %d, updated %d, failed %d\n", res.Claimed, res.Updated, res.Failed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&batch, "batch", 0, "Rows to claim (default: worker_batch)")
	return cmd
}
