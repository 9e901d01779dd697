package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"habitflow/pkg/db"
)

var (
	migrationsDir  string
	migrateDryRun  bool
	migrateTimeout time.Duration
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name       TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	Long: `Runs every migrations/*.sql file not yet recorded in schema_migrations, in
file name order, each inside its own transaction.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "directory holding *.sql files")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "list pending migrations without applying them")
	migrateCmd.Flags().DurationVar(&migrateTimeout, "timeout", 2*time.Minute, "overall deadline")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	files, err := migrationFiles(migrationsDir)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
	defer cancel()

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := pool.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}
	applied := make(map[string]bool, len(names))
	for _, n := range names {
		applied[n] = true
	}

	pending := pendingMigrations(files, applied)
	out := cmd.OutOrStdout()
	if len(pending) == 0 {
		fmt.Fprintln(out, "Schema is up to date")
		return nil
	}

	for _, path := range pending {
		name := filepath.Base(path)
		if migrateDryRun {
			fmt.Fprintf(out, "pending  %s\n", name)
			continue
		}
		if err := applyMigration(ctx, pool, path); err != nil {
			return err
		}
		log.Info("Migration applied", zap.String("name", name))
		fmt.Fprintf(out, "applied  %s\n", name)
	}
	return nil
}

// migrationFiles returns the *.sql files under dir, sorted by name.
func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations found in %s", dir)
	}
	return files, nil
}

func pendingMigrations(files []string, applied map[string]bool) []string {
	var out []string
	for _, f := range files {
		if !applied[filepath.Base(f)] {
			out = append(out, f)
		}
	}
	return out
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

func applyMigration(ctx context.Context, conn txBeginner, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	return tx.Commit(ctx)
}
