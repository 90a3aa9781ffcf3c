package progressmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating cache_entries table...")

		_, err := db.NewRaw(`
			CREATE TABLE IF NOT EXISTS cache_entries (
				cache_key  text        PRIMARY KEY,
				value      bytea       NOT NULL,
				expires_at timestamptz NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries (expires_at);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create cache_entries table: %w", err)
		}

		fmt.Println("cache_entries table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping cache_entries table...")

		if _, err := db.NewRaw("DROP TABLE IF EXISTS cache_entries").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("cache_entries table dropped successfully!")
		return nil
	})
}
