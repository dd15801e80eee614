package repository

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/entity"
)

// Open connects to Postgres and migrates the schema. The pgvector extension
// must exist before the chunk/clause tables can be created.
func Open(cfg common.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	logger.Info("connecting to database")
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("create vector extension: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database ready")
	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Contract{},
		&entity.ContractChunk{},
		&entity.Clause{},
		&entity.LLMUsageLog{},
		&entity.PipelineTask{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close shuts the underlying connection pool.
func Close(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("unwrap sql db for close", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("close database", "error", err)
	}
}
