package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pactly/contract-analyzer/constants"
)

// PipelineTask is one durable unit of pipeline work. Rows are the queue:
// a worker claims a due QUEUED row, runs the stage, and either marks it DONE
// (enqueueing the next stage), reschedules it with backoff, or marks it
// FAILED. Delivery is at-least-once; stages are idempotent to cope.
type PipelineTask struct {
	ID          uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ContractID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	Stage       constants.PipelineStage `gorm:"size:50;not null"`
	Payload     datatypes.JSON          `gorm:"type:jsonb"`
	Status      constants.TaskStatus    `gorm:"size:20;not null;index:idx_task_due,priority:1"`
	Attempts    int                     `gorm:"not null;default:0"`
	MaxAttempts int                     `gorm:"not null;default:3"`
	RunAt       time.Time               `gorm:"not null;index:idx_task_due,priority:2"`
	LastError   *string                 `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PipelineTask) TableName() string { return "pipeline_tasks" }
