package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// ContractChunk is one token-bounded slice of a contract's raw text. Created
// once by the extract-and-chunk stage; the embedding is populated once by the
// embedding stage and never touched again.
type ContractChunk struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uq_chunk_contract_index,priority:1" json:"contract_id"`
	ChunkIndex int               `gorm:"not null;uniqueIndex:uq_chunk_contract_index,priority:2" json:"chunk_index"`
	Content    string            `gorm:"type:text;not null" json:"content"`
	TokenCount int               `gorm:"not null" json:"token_count"`
	Embedding  *pgvector.Vector  `gorm:"type:vector(1536)" json:"-"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (ContractChunk) TableName() string { return "contract_chunks" }
