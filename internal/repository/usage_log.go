package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pactly/contract-analyzer/internal/entity"
)

type UsageLogRepository interface {
	// Create appends one usage record. Records are never mutated.
	Create(ctx context.Context, rec *entity.LLMUsageLog) error
}

type usageLogRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewUsageLogRepository(db *gorm.DB, log *slog.Logger) UsageLogRepository {
	return &usageLogRepo{db: db, log: log}
}

func (r *usageLogRepo) Create(ctx context.Context, rec *entity.LLMUsageLog) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		r.log.Error("usage log create failed", "operation", rec.Operation, "err", err)
		return err
	}
	return nil
}
