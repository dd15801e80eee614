package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"github.com/pactly/contract-analyzer/constants"
)

// Clause is one extracted contractual provision. Written once by the clause
// stage; a future risk-assessment stage may attach to it.
type Clause struct {
	ID               uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID       uuid.UUID            `gorm:"type:uuid;not null;index" json:"contract_id"`
	ClauseType       constants.ClauseType `gorm:"size:100;not null" json:"clause_type"`
	Title            string               `gorm:"size:500;not null" json:"title"`
	Content          string               `gorm:"type:text;not null" json:"content"`
	Summary          string               `gorm:"type:text" json:"summary"`
	SectionReference *string              `gorm:"size:100" json:"section_reference,omitempty"`
	Embedding        *pgvector.Vector     `gorm:"type:vector(1536)" json:"-"`
	Metadata         datatypes.JSONMap    `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

func (Clause) TableName() string { return "clauses" }
