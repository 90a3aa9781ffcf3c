package testutils

import (
	"context"
	"fmt"
	"log"

	progressmigrations "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// progressTables lists the tables truncated between tests, children first.
var progressTables = []string{
	"player_sessions",
	"player_games",
	"player_achievements",
	"achievements",
	"users",
	"games",
	"systems",
	"cache_entries",
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, progressmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run progress migrations: %w", err)
	}
	log.Printf("Progress migrations applied: %s", group)
	return nil
}

// CleanProgressTables truncates every progress table.
func CleanProgressTables(ctx context.Context, db bun.IDB) error {
	for _, table := range progressTables {
		if _, err := db.NewTruncateTable().TableExpr(table).Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
