package progressmigrations

import (
	"context"
	"fmt"

	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating player_sessions table and rich presence columns...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*progressdb.PlayerSession)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create player_sessions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE users ADD COLUMN IF NOT EXISTS last_game_id bigint NOT NULL DEFAULT 0;
				ALTER TABLE users ADD COLUMN IF NOT EXISTS rich_presence_msg varchar NOT NULL DEFAULT '';
				ALTER TABLE users ADD COLUMN IF NOT EXISTS rich_presence_msg_date timestamptz;
				CREATE INDEX IF NOT EXISTS idx_player_sessions_game_presence
					ON player_sessions (game_id, rich_presence_updated_at DESC);
				CREATE INDEX IF NOT EXISTS idx_users_last_game
					ON users (last_game_id, rich_presence_msg_date DESC);
			`); err != nil {
				return fmt.Errorf("failed to add rich presence columns: %w", err)
			}

			fmt.Println("player_sessions table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping player_sessions table and rich presence columns...")

		if _, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS player_sessions;
			ALTER TABLE users DROP COLUMN IF EXISTS last_game_id;
			ALTER TABLE users DROP COLUMN IF EXISTS rich_presence_msg;
			ALTER TABLE users DROP COLUMN IF EXISTS rich_presence_msg_date;
		`); err != nil {
			return err
		}

		fmt.Println("player_sessions table dropped successfully!")
		return nil
	})
}
