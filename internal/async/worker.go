package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pactly/contract-analyzer/internal/entity"
	"github.com/pactly/contract-analyzer/internal/repository"
)

// TaskHandler runs one claimed task to a terminal queue outcome.
type TaskHandler interface {
	HandleTask(ctx context.Context, task *entity.PipelineTask) error
}

// WorkerPool polls the durable task queue with N workers. Each worker claims
// one due task at a time, runs it under a per-task timeout, and sleeps for the
// poll interval when the queue is empty. Tasks already claimed keep running
// to completion after Stop is called.
type WorkerPool struct {
	tasks    repository.TaskRepository
	handler  TaskHandler
	workers  int
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

type WorkerConfig struct {
	Workers      int
	PollInterval time.Duration
	TaskTimeout  time.Duration
}

func NewWorkerPool(tasks repository.TaskRepository, handler TaskHandler, cfg WorkerConfig, log *slog.Logger) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &WorkerPool{
		tasks:    tasks,
		handler:  handler,
		workers:  cfg.Workers,
		interval: cfg.PollInterval,
		timeout:  cfg.TaskTimeout,
		log:      log,
	}
}

// Start launches the workers. It returns immediately; use Stop to drain.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.log.Info("worker.pool.start", "workers", p.workers, "poll_interval", p.interval)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Stop signals the workers to stop claiming new tasks and waits for in-flight
// tasks to finish.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.log.Info("worker.pool.stopped")
}

func (p *WorkerPool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.log.With("worker", id)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := p.tasks.ClaimDue(ctx, time.Now().UTC())
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("worker.claim_error", "error", err)
			p.sleep(ctx)
			continue
		}
		if task == nil {
			p.sleep(ctx)
			continue
		}

		p.execute(ctx, log, task)
	}
}

func (p *WorkerPool) execute(ctx context.Context, log *slog.Logger, task *entity.PipelineTask) {
	// The task runs under its own timeout, detached from the poll loop's
	// cancellation so shutdown drains in-flight work instead of aborting it.
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	start := time.Now()
	log.Info("worker.task.start", "task_id", task.ID, "contract_id", task.ContractID, "stage", task.Stage, "attempt", task.Attempts)
	if err := p.handler.HandleTask(taskCtx, task); err != nil {
		log.Error("worker.task.handler_error", "task_id", task.ID, "error", err)
		return
	}
	log.Info("worker.task.done", "task_id", task.ID, "stage", task.Stage, "elapsed_ms", time.Since(start).Milliseconds())
}

func (p *WorkerPool) sleep(ctx context.Context) {
	t := time.NewTimer(p.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
