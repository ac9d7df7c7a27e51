// stockexctl runs database migrations and allotment jobs outside the API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockex-backend/bootstrap"
	"stockex-backend/internal/config"
	"stockex-backend/internal/infrastructure/database"
	"stockex-backend/internal/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var drainTimeout time.Duration

func main() {
	rootCmd := &cobra.Command{
		Use:           "stockexctl",
		Short:         "StockEx maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().DurationVar(&drainTimeout, "drain", 5*time.Second, "How long to deliver queued notifications before exiting")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(allotCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withServices loads config, composes the services and runs fn with a signal-aware context.
func withServices(fn func(ctx context.Context, s *bootstrap.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.Env)
	s, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fn(ctx, s)
}

// drain lets the notification worker deliver what the command enqueued.
func drain(ctx context.Context, s *bootstrap.Services) {
	if drainTimeout <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	s.Worker.Run(ctx)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, s *bootstrap.Services) error {
				if err := database.AutoMigrate(s.DB.WithContext(ctx)); err != nil {
					return err
				}
				fmt.Println("migrations applied")
				return nil
			})
		},
	}
}

func allotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allot <round-id>",
		Short: "Allot one closed IPO round now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roundID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid round id %q: %w", args[0], err)
			}
			return withServices(func(ctx context.Context, s *bootstrap.Services) error {
				report, err := s.Allotment.Settle(ctx, roundID)
				if err != nil {
					return err
				}
				drain(ctx, s)
				return printJSON(report)
			})
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one scheduler pass: refresh statuses, allot due rounds, sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, s *bootstrap.Services) error {
				res, err := s.Trigger.RunOnce(ctx)
				if err != nil {
					return err
				}
				drain(ctx, s)
				return printJSON(res)
			})
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Settle holdings for allotted applications that were not materialized",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, s *bootstrap.Services) error {
				res, err := s.Allotment.SettleOutstanding(ctx)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}
}
