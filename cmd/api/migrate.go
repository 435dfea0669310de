package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/viewpoint-explorer/backend/internal/config"
	"github.com/pkordes/viewpoint-explorer/backend/migrations"
)

// migrateFunc runs one goose operation and writes a report to out.
type migrateFunc func(ctx context.Context, p *goose.Provider, out io.Writer) error

func newMigrateCommand() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.PersistentFlags().String("database-url", "", "Postgres connection string (overrides DATABASE_URL)")
	if err := v.BindPFlag(config.KeyDatabaseURL, cmd.PersistentFlags().Lookup("database-url")); err != nil {
		panic(fmt.Sprintf("bind flag database-url: %v", err))
	}

	run := func(fn migrateFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			provider, closeDB, err := newMigrationProvider(v.GetString(config.KeyDatabaseURL))
			if err != nil {
				return err
			}
			defer closeDB()
			return fn(cmd.Context(), provider, cmd.OutOrStdout())
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(migrateUp),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE:  run(migrateDown),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and when they were applied",
			Args:  cobra.NoArgs,
			RunE:  run(migrateStatus),
		},
	)
	return cmd
}

// newMigrationProvider opens database/sql over the pgx driver, which is what
// goose needs, and returns a provider over the embedded migrations.
func newMigrationProvider(dsn string) (*goose.Provider, func(), error) {
	if dsn == "" {
		return nil, nil, errors.New("migrate: " + config.KeyDatabaseURL + " is required")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("migrate: open database: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate: create provider: %w", err)
	}
	return provider, func() { sqlDB.Close() }, nil
}

func migrateUp(ctx context.Context, p *goose.Provider, out io.Writer) error {
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "no migrations to apply")
		return nil
	}
	for _, r := range results {
		writeResult(out, r)
	}
	return nil
}

func migrateDown(ctx context.Context, p *goose.Provider, out io.Writer) error {
	result, err := p.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	writeResult(out, result)
	return nil
}

func migrateStatus(ctx context.Context, p *goose.Provider, out io.Writer) error {
	statuses, err := p.Status(ctx)
	if err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	for _, s := range statuses {
		applied := "pending"
		if s.State == goose.StateApplied {
			applied = s.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(out, "%-22s %s\n", applied, filepath.Base(s.Source.Path))
	}
	return nil
}

func writeResult(out io.Writer, r *goose.MigrationResult) {
	fmt.Fprintf(out, "%-4s %s (%s)\n", r.Direction, filepath.Base(r.Source.Path), r.Duration.Round(time.Millisecond))
}
