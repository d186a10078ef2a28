// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taibuivan/bookgod/internal/core/book"
	"github.com/taibuivan/bookgod/internal/platform/migration"
	"github.com/taibuivan/bookgod/internal/users/auth"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := migration.Version(cfg.DatabaseURL, cfg.MigrationPath, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
			return nil
		},
	})

	return cmd
}

func ratingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratings",
		Short: "Book rating maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "repair",
		Short: "Recompute star aggregates that drifted from the rating rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				service := book.NewService(book.Dependencies{
					Books:   book.NewBookRepository(pool),
					Ratings: book.NewRatingRepository(pool),
					Logger:  log,
				})

				fixed, err := service.RepairRatings(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d book(s) repaired\n", fixed)
				return nil
			})
		},
	})

	return cmd
}

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Refresh-token session maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired and long-revoked sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				service := auth.NewService(nil, auth.NewSessionRepository(pool), nil, nil, nil, log)

				deleted, err := service.PurgeExpiredSessions(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d session(s) purged\n", deleted)
				return nil
			})
		},
	})

	return cmd
}
