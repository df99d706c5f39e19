package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gigboard/gigadmin/internal/config"
	"github.com/gigboard/gigadmin/internal/db"
	"github.com/gigboard/gigadmin/internal/db/migrations"
	"github.com/gigboard/gigadmin/internal/dbpool"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *dbpool.Pool, cfg *config.Config) error {
				return db.RunMigrations(ctx, pool, newLogger(cfg.LogLevel), migrations.FS)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *dbpool.Pool, cfg *config.Config) error {
				return db.RollbackLast(ctx, pool, newLogger(cfg.LogLevel), migrations.FS)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *dbpool.Pool, _ *config.Config) error {
				states, err := db.MigrationStatus(ctx, pool, migrations.FS)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tSTATE\tFILE")
				for _, s := range states {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, state, s.Path)
				}

				return tw.Flush()
			})
		},
	})

	return cmd
}

func withPool(ctx context.Context, fn func(context.Context, *dbpool.Pool, *config.Config) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := dbpool.NewPool(ctx, dbpool.Options{
		URL: cfg.DatabaseURL.Value(), MaxConns: 2, AppName: "gigadmin-migrate",
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, pool, cfg)
}
