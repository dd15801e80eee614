package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/entity"
)

type TaskRepository interface {
	Enqueue(ctx context.Context, task *entity.PipelineTask) error
	// ClaimDue atomically moves the oldest due QUEUED task to RUNNING and
	// returns it. Returns common-style nil,nil when nothing is due.
	ClaimDue(ctx context.Context, now time.Time) (*entity.PipelineTask, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	// Reschedule puts a RUNNING task back in the queue to run at runAt,
	// recording the error that caused the retry.
	Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
}

type taskRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewTaskRepository(db *gorm.DB, log *slog.Logger) TaskRepository {
	return &taskRepo{db: db, log: log}
}

func (r *taskRepo) Enqueue(ctx context.Context, task *entity.PipelineTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.Status = constants.TaskQueued
	if task.RunAt.IsZero() {
		task.RunAt = time.Now().UTC()
	}
	if task.MaxAttempts <= 0 {
		task.MaxAttempts = 3
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Error("task enqueue failed", "contract_id", task.ContractID, "stage", task.Stage, "err", err)
		return err
	}
	r.log.Info("task enqueued", "task_id", task.ID, "contract_id", task.ContractID, "stage", task.Stage)
	return nil
}

func (r *taskRepo) ClaimDue(ctx context.Context, now time.Time) (*entity.PipelineTask, error) {
	var task *entity.PipelineTask
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t entity.PipelineTask
		err := tx.
			Where("status = ? AND run_at <= ?", constants.TaskQueued, now).
			Order("run_at ASC").
			First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		// Guard the claim with the previous status so two pollers racing on
		// the same row cannot both win.
		res := tx.Model(&entity.PipelineTask{}).
			Where("id = ? AND status = ?", t.ID, constants.TaskQueued).
			Updates(map[string]any{
				"status":     constants.TaskRunning,
				"attempts":   t.Attempts + 1,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		t.Status = constants.TaskRunning
		t.Attempts++
		task = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepo) MarkDone(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, constants.TaskDone, nil, nil)
}

func (r *taskRepo) Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error {
	return r.setStatus(ctx, id, constants.TaskQueued, &runAt, &lastError)
}

func (r *taskRepo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.setStatus(ctx, id, constants.TaskFailed, nil, &lastError)
}

func (r *taskRepo) setStatus(ctx context.Context, id uuid.UUID, status constants.TaskStatus, runAt *time.Time, lastError *string) error {
	updates := map[string]any{"status": status, "updated_at": time.Now().UTC()}
	if runAt != nil {
		updates["run_at"] = *runAt
	}
	if lastError != nil {
		updates["last_error"] = *lastError
	}
	res := r.db.WithContext(ctx).Model(&entity.PipelineTask{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
