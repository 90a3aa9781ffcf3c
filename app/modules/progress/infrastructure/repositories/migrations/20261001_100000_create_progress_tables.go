package progressmigrations

import (
	"context"
	"fmt"

	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating progress tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []interface{}{
				(*progressdb.System)(nil),
				(*progressdb.Game)(nil),
				(*progressdb.User)(nil),
				(*progressdb.Achievement)(nil),
				(*progressdb.PlayerAchievement)(nil),
				(*progressdb.PlayerGame)(nil),
			}
			for _, model := range models {
				if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", model, err)
				}
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE UNIQUE INDEX IF NOT EXISTS idx_player_achievements_user_achievement
					ON player_achievements (user_id, achievement_id);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_player_games_user_game
					ON player_games (user_id, game_id);
				CREATE INDEX IF NOT EXISTS idx_player_games_game_points
					ON player_games (game_id, points DESC);
				CREATE INDEX IF NOT EXISTS idx_player_games_game_hardcore
					ON player_games (game_id, points_hardcore DESC, achievements_unlocked_hardcore DESC, last_unlock_hardcore_at);
				CREATE INDEX IF NOT EXISTS idx_achievements_game_flags
					ON achievements (game_id, flags);
				CREATE INDEX IF NOT EXISTS idx_games_system
					ON games (system_id);
			`); err != nil {
				return fmt.Errorf("failed to create progress indexes: %w", err)
			}

			fmt.Println("Progress tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping progress tables...")

		if _, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS player_games;
			DROP TABLE IF EXISTS player_achievements;
			DROP TABLE IF EXISTS achievements;
			DROP TABLE IF EXISTS users;
			DROP TABLE IF EXISTS games;
			DROP TABLE IF EXISTS systems;
		`); err != nil {
			return fmt.Errorf("failed to drop progress tables: %w", err)
		}

		fmt.Println("Progress tables dropped successfully!")
		return nil
	})
}
