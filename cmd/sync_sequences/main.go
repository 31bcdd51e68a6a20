// Command sync_sequences realigns PostgreSQL serial sequences after rows were
// copied in with explicit ids.
package main

import (
	"fmt"
	"log"

	"voice-console/internal/config"
	"voice-console/internal/database"
	"voice-console/internal/logging"
	"voice-console/internal/models"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.DBDriver != "postgres" {
		logger.Fatal("sync_sequences needs DB_DRIVER=postgres", zap.String("driver", cfg.DBDriver))
	}
	db, err := database.InitGorm(cfg)
	if err != nil {
		logger.Fatal("failed to connect", zap.Error(err))
	}

	// Only tables with a serial id column.
	tables := []string{
		models.MutationLog{}.TableName(),
	}

	for _, table := range tables {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), coalesce(max(id), 0) + 1, false) FROM %s", table, table)
		if err := db.Exec(query).Error; err != nil {
			logger.Error("syncing sequence", zap.String("table", table), zap.Error(err))
			continue
		}
		logger.Info("synced sequence", zap.String("table", table))
	}
}
