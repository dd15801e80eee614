package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/entity"
)

type ContractRepository interface {
	Create(ctx context.Context, c *entity.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error)
	GetByFileHash(ctx context.Context, hash string) (*entity.Contract, error)
	List(ctx context.Context) ([]entity.Contract, error)
	Delete(ctx context.Context, id uuid.UUID) error

	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	SetExtraction(ctx context.Context, id uuid.UUID, rawText string, pageCount, tokenCount int) error
}

type contractRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewContractRepository(db *gorm.DB, log *slog.Logger) ContractRepository {
	return &contractRepo{db: db, log: log}
}

func (r *contractRepo) Create(ctx context.Context, c *entity.Contract) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent upload of the same bytes lost the race on the
			// file_hash unique index.
			r.log.Warn("contract create hit duplicate", "contract_id", c.ID, "file_hash", c.FileHash)
			return common.ErrDuplicate
		}
		r.log.Error("contract create failed", "contract_id", c.ID, "err", err)
		return err
	}
	r.log.Info("contract created", "contract_id", c.ID, "filename", c.Filename, "status", c.Status)
	return nil
}

func (r *contractRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	var c entity.Contract
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contractRepo) GetByFileHash(ctx context.Context, hash string) (*entity.Contract, error) {
	var c entity.Contract
	err := r.db.WithContext(ctx).First(&c, "file_hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contractRepo) List(ctx context.Context) ([]entity.Contract, error) {
	var out []entity.Contract
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contractRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Contract{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	r.log.Info("contract deleted", "contract_id", id)
	return nil
}

func (r *contractRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.updateStatus(ctx, id, constants.StatusProcessing, nil)
}

func (r *contractRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.updateStatus(ctx, id, constants.StatusFailed, &message)
}

func (r *contractRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.updateStatus(ctx, id, constants.StatusCompleted, nil)
}

func (r *contractRepo) updateStatus(ctx context.Context, id uuid.UUID, status constants.ContractStatus, message *string) error {
	updates := map[string]any{"status": status, "updated_at": time.Now().UTC()}
	if message != nil {
		updates["error_message"] = *message
	}
	res := r.db.WithContext(ctx).Model(&entity.Contract{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		r.log.Error("contract status update failed", "contract_id", id, "status", status, "err", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	r.log.Info("contract status updated", "contract_id", id, "status", status)
	return nil
}

func (r *contractRepo) SetExtraction(ctx context.Context, id uuid.UUID, rawText string, pageCount, tokenCount int) error {
	res := r.db.WithContext(ctx).Model(&entity.Contract{}).Where("id = ?", id).Updates(map[string]any{
		"raw_text":    rawText,
		"page_count":  pageCount,
		"token_count": tokenCount,
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
