package entity

import (
	"time"

	"github.com/google/uuid"
)

// LLMUsageLog is an append-only record of one model call. The contract
// reference is nullable and goes NULL on contract deletion, so the record
// survives without a dangling id.
type LLMUsageLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID   *uuid.UUID `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	Contract     *Contract  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Provider     string     `gorm:"size:50;not null" json:"provider"`
	Model        string     `gorm:"size:100;not null" json:"model"`
	Operation    string     `gorm:"size:100;not null" json:"operation"`
	InputTokens  int        `gorm:"not null" json:"input_tokens"`
	OutputTokens int        `gorm:"not null" json:"output_tokens"`
	CostUSD      *float64   `json:"cost_usd,omitempty"`
	LatencyMS    int        `gorm:"not null" json:"latency_ms"`
	Success      bool       `gorm:"not null;default:true" json:"success"`
	ErrorMessage *string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (LLMUsageLog) TableName() string { return "llm_usage_logs" }
