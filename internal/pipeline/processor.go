package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/entity"
	"github.com/pactly/contract-analyzer/internal/repository"
)

// Stage is one retryable unit of pipeline work.
type Stage interface {
	Name() constants.PipelineStage
	Run(ctx context.Context, env StageResult) (StageResult, error)
}

// Processor executes durable tasks and drives the contract status machine.
// Stage n+1 is enqueued only after stage n's result is durably recorded; a
// stage failure with retry budget left is rescheduled with backoff, and an
// exhausted or permanent failure is recorded on the contract best-effort.
type Processor struct {
	stages    map[constants.PipelineStage]Stage
	tasks     repository.TaskRepository
	contracts repository.ContractRepository
	baseDelay time.Duration
	maxDelay  time.Duration
	log       *slog.Logger
}

func NewProcessor(tasks repository.TaskRepository, contracts repository.ContractRepository, log *slog.Logger, stages ...Stage) *Processor {
	if log == nil {
		log = slog.Default()
	}
	m := make(map[constants.PipelineStage]Stage, len(stages))
	for _, s := range stages {
		m[s.Name()] = s
	}
	return &Processor{
		stages:    m,
		tasks:     tasks,
		contracts: contracts,
		baseDelay: time.Second,
		maxDelay:  10 * time.Second,
		log:       log,
	}
}

// HandleTask runs one claimed task to a terminal queue outcome. The returned
// error reports worker-side bookkeeping problems only; stage failures are
// absorbed into the task/contract state.
func (p *Processor) HandleTask(ctx context.Context, task *entity.PipelineTask) error {
	stage, ok := p.stages[task.Stage]
	if !ok {
		msg := fmt.Sprintf("no stage registered for %q", task.Stage)
		p.log.Error("pipeline.task.unknown_stage", "task_id", task.ID, "stage", task.Stage)
		return p.tasks.MarkFailed(ctx, task.ID, msg)
	}

	env, err := DecodeEnvelope(task.Payload, task.ContractID)
	if err != nil {
		p.failTask(ctx, task, err)
		return nil
	}

	out, err := stage.Run(ctx, env)
	if err == nil {
		if err := p.tasks.MarkDone(ctx, task.ID); err != nil {
			return fmt.Errorf("mark task done: %w", err)
		}
		return p.enqueueNext(ctx, task, out)
	}

	if errors.Is(err, common.ErrNotFound) {
		// Contract deleted mid-pipeline: nothing left to mark, complete the
		// task as failed without escalating.
		p.log.Warn("pipeline.task.contract_gone", "task_id", task.ID, "contract_id", task.ContractID, "stage", task.Stage)
		return p.tasks.MarkFailed(ctx, task.ID, err.Error())
	}

	if !common.IsPermanent(err) && task.Attempts < task.MaxAttempts {
		shift := task.Attempts - 1
		if shift < 0 {
			shift = 0
		}
		delay := p.baseDelay << shift
		if delay > p.maxDelay {
			delay = p.maxDelay
		}
		runAt := time.Now().UTC().Add(delay)
		p.log.Warn("pipeline.task.retry",
			"task_id", task.ID,
			"contract_id", task.ContractID,
			"stage", task.Stage,
			"attempt", task.Attempts,
			"next_run", runAt,
			"error", err,
		)
		if rerr := p.tasks.Reschedule(ctx, task.ID, runAt, err.Error()); rerr != nil {
			return fmt.Errorf("reschedule task: %w", rerr)
		}
		return nil
	}

	p.failTask(ctx, task, err)
	return nil
}

func (p *Processor) enqueueNext(ctx context.Context, task *entity.PipelineTask, env StageResult) error {
	next := constants.NextStage(task.Stage)
	if next == "" {
		p.log.Info("pipeline.chain.complete", "contract_id", task.ContractID)
		return nil
	}
	payload, err := EncodeEnvelope(env)
	if err != nil {
		p.failTask(ctx, task, err)
		return nil
	}
	return p.tasks.Enqueue(ctx, &entity.PipelineTask{
		ContractID:  task.ContractID,
		Stage:       next,
		Payload:     payload,
		MaxAttempts: task.MaxAttempts,
	})
}

// failTask records the terminal failure on the task and, best-effort, on the
// contract. A failure while recording failure is logged and swallowed so it
// never masks the original error or crashes the worker.
func (p *Processor) failTask(ctx context.Context, task *entity.PipelineTask, cause error) {
	p.log.Error("pipeline.task.failed",
		"task_id", task.ID,
		"contract_id", task.ContractID,
		"stage", task.Stage,
		"attempts", task.Attempts,
		"error", cause,
	)
	if err := p.tasks.MarkFailed(ctx, task.ID, cause.Error()); err != nil {
		p.log.Error("pipeline.task.mark_failed_error", "task_id", task.ID, "error", err)
	}
	if err := p.contracts.MarkFailed(ctx, task.ContractID, cause.Error()); err != nil {
		p.log.Error("pipeline.contract.mark_failed_error", "contract_id", task.ContractID, "error", err)
	}
}
