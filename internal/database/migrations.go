package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// indexes backs the ordered listing queries.
var indexes = []index{
	{"boards", "idx_boards_user_order", "user_id, display_order"},
	{"sections", "idx_sections_board_order", "board_id, display_order"},
	{"tasks", "idx_tasks_scope_order", "user_id, board_id, section_id, display_order"},
	{"tasks", "idx_tasks_user_status", "user_id, status"},
	{"tasks", "idx_tasks_timer", "user_id, timer_started_at, timer_completed_at"},
	{"connections", "idx_connections_user_status", "user_id, status"},
}

// AddIndexes creates the composite indexes that are missing.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.WithField("index", idx.name).Debug("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithFields(log.Fields{"index": idx.name, "table": idx.table}).Info("created index")
	}

	return nil
}
