// Command migrate_data copies the console store from SQLite (DB_PATH) to the
// PostgreSQL server named by the DB_* settings.
package main

import (
	"log"

	"voice-console/internal/config"
	"voice-console/internal/database"
	"voice-console/internal/logging"
	"voice-console/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 500

func main() {
	cfg := config.LoadConfig()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	sqliteDB, err := database.Open("sqlite", cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to connect to SQLite", zap.Error(err))
	}
	logger.Info("connected to SQLite", zap.String("path", cfg.DBPath))

	pgDB, err := database.Open("postgres", database.PostgresDSN(cfg))
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	if err := database.Migrate(pgDB); err != nil {
		logger.Fatal("failed to migrate PostgreSQL schema", zap.Error(err))
	}

	logger.Info("starting data migration")

	migrateTable := func(tableName string, source interface{}) {
		if err := sqliteDB.Find(source).Error; err != nil {
			logger.Error("reading table from SQLite", zap.String("table", tableName), zap.Error(err))
			return
		}
		err := pgDB.Transaction(func(tx *gorm.DB) error {
			// Rows already copied by an earlier run are left alone.
			return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(source, batchSize).Error
		})
		if err != nil {
			logger.Error("writing table to PostgreSQL", zap.String("table", tableName), zap.Error(err))
			return
		}
		logger.Info("migrated table", zap.String("table", tableName))
	}

	var settings []models.ConsoleSetting
	migrateTable("console_settings", &settings)

	var logs []models.MutationLog
	migrateTable("mutation_logs", &logs)

	logger.Info("migration completed")
}
