package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// AddIndexes adds ordering and lookup indexes that struct tags do not express.
func AddIndexes(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Display order within a board or list
		{"lists", "idx_lists_board_position", "board_id, position"},
		{"cards", "idx_cards_list_position", "list_id, position"},

		// Invitation lookups by board and state
		{"board_invitations", "idx_board_invitations_board_status", "board_id, status"},

		{"audit_logs", "idx_audit_logs_board_created", "board_id, created_at"},
	}

	migrator := db.WithContext(ctx).Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.WithContext(ctx).Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Msg("created index")
	}

	return nil
}
