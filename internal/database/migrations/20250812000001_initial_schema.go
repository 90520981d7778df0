package migrations

import (
	"context"
	"fmt"

	"github.com/askora/askora/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.User)(nil),
			(*types.Ban)(nil),
			(*types.Warning)(nil),
			(*types.ModerationStats)(nil),
			(*types.ModerationStrike)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		// Lookup indexes for the enforcement and ledger paths
		indexes := []struct {
			name  string
			model any
			cols  []string
		}{
			{"idx_bans_user_id", (*types.Ban)(nil), []string{"user_id"}},
			{"idx_bans_user_expiry", (*types.Ban)(nil), []string{"user_id", "ban_type", "expires_at"}},
			{"idx_warnings_user_id", (*types.Warning)(nil), []string{"user_id", "expires_at"}},
			{"idx_strikes_user_id", (*types.ModerationStrike)(nil), []string{"user_id", "created_at"}},
		}

		for _, idx := range indexes {
			q := db.NewCreateIndex().
				Model(idx.model).
				Index(idx.name).
				IfNotExists()

			for _, col := range idx.cols {
				q = q.Column(col)
			}

			if _, err := q.Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.name, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.ModerationStrike)(nil),
			(*types.ModerationStats)(nil),
			(*types.Warning)(nil),
			(*types.Ban)(nil),
			(*types.User)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table for %T: %w", model, err)
			}
		}

		return nil
	})
}
