package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pactly/contract-analyzer/internal/entity"
)

type SearchRepository interface {
	// SimilarChunks returns the k chunks of one contract closest to the query
	// vector under cosine distance. Chunks without an embedding never match,
	// and chunks of other contracts are never returned.
	SimilarChunks(ctx context.Context, contractID uuid.UUID, query pgvector.Vector, k int) ([]entity.ContractChunk, error)
}

type searchRepo struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepo{db: db}
}

func (r *searchRepo) SimilarChunks(ctx context.Context, contractID uuid.UUID, query pgvector.Vector, k int) ([]entity.ContractChunk, error) {
	if k <= 0 {
		k = 5
	}
	var out []entity.ContractChunk
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where("embedding IS NOT NULL").
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?",
			Vars: []interface{}{query},
		}}).
		Limit(k).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
