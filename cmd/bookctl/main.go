// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command bookctl runs BookGod maintenance tasks outside the API process.
//
//	bookctl migrate up
//	bookctl migrate version
//	bookctl ratings repair
//	bookctl sessions purge
//
// Only DATABASE_URL (and optionally MIGRATION_PATH) is read from the environment.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	pgstore "github.com/taibuivan/bookgod/internal/platform/postgres"
)

// ctlConfig is the subset of the server configuration the CLI needs.
type ctlConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
}

var (
	cfg     ctlConfig
	verbose bool
	log     *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bookctl",
		Short:         "Maintenance commands for the BookGod backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			if err := env.Parse(&cfg); err != nil {
				return fmt.Errorf("config: failed to parse environment variables: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(ratingsCmd())
	rootCmd.AddCommand(sessionsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withPool opens a pool for the duration of fn.
func withPool(ctx context.Context, fn func(pool *pgxpool.Pool) error) error {
	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(pool)
}
