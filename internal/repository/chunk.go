package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/pactly/contract-analyzer/internal/entity"
)

type ChunkRepository interface {
	// BulkCreate replaces any existing chunk set for the contract. Deleting
	// first keeps re-runs of the extract stage from violating the
	// (contract_id, chunk_index) uniqueness constraint.
	BulkCreate(ctx context.Context, contractID uuid.UUID, chunks []entity.ContractChunk) error
	GetByContractID(ctx context.Context, contractID uuid.UUID) ([]entity.ContractChunk, error)
	UpdateEmbedding(ctx context.Context, chunkID uuid.UUID, embedding pgvector.Vector) error
}

type chunkRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewChunkRepository(db *gorm.DB, log *slog.Logger) ChunkRepository {
	return &chunkRepo{db: db, log: log}
}

func (r *chunkRepo) BulkCreate(ctx context.Context, contractID uuid.UUID, chunks []entity.ContractChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.ContractChunk{}, "contract_id = ?", contractID).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		for i := range chunks {
			if chunks[i].ID == uuid.Nil {
				chunks[i].ID = uuid.New()
			}
			chunks[i].ContractID = contractID
		}
		if err := tx.Create(&chunks).Error; err != nil {
			r.log.Error("chunk bulk create failed", "contract_id", contractID, "count", len(chunks), "err", err)
			return err
		}
		r.log.Info("chunks created", "contract_id", contractID, "count", len(chunks))
		return nil
	})
}

func (r *chunkRepo) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]entity.ContractChunk, error) {
	var out []entity.ContractChunk
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("chunk_index ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chunkRepo) UpdateEmbedding(ctx context.Context, chunkID uuid.UUID, embedding pgvector.Vector) error {
	return r.db.WithContext(ctx).Model(&entity.ContractChunk{}).
		Where("id = ?", chunkID).
		Update("embedding", embedding).Error
}
