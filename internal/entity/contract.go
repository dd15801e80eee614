package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/pactly/contract-analyzer/constants"
)

// Contract is one uploaded document and its processing state. Mutated only by
// the upload path and by pipeline stage transitions.
type Contract struct {
	ID           uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	Filename     string                   `gorm:"size:255;not null" json:"filename"`
	FilePath     string                   `gorm:"size:500;not null" json:"-"`
	FileHash     string                   `gorm:"size:64;not null;uniqueIndex" json:"file_hash"`
	ContentType  string                   `gorm:"size:50;not null" json:"content_type"`
	RawText      *string                  `gorm:"type:text" json:"-"`
	Status       constants.ContractStatus `gorm:"size:20;not null;default:pending" json:"status"`
	PageCount    *int                     `json:"page_count,omitempty"`
	TokenCount   *int                     `json:"token_count,omitempty"`
	ErrorMessage *string                  `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`

	Chunks  []ContractChunk `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"-"`
	Clauses []Clause        `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Contract) TableName() string { return "contracts" }
