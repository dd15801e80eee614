package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/entity"
)

type queueStub struct {
	mu    sync.Mutex
	tasks []*entity.PipelineTask
}

func (q *queueStub) Enqueue(_ context.Context, task *entity.PipelineTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.Status = constants.TaskQueued
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *queueStub) ClaimDue(_ context.Context, _ time.Time) (*entity.PipelineTask, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.tasks {
		if t.Status == constants.TaskQueued {
			t.Status = constants.TaskRunning
			t.Attempts++
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (q *queueStub) MarkDone(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.tasks {
		if t.ID == id {
			t.Status = constants.TaskDone
		}
	}
	return nil
}

func (q *queueStub) Reschedule(context.Context, uuid.UUID, time.Time, string) error { return nil }
func (q *queueStub) MarkFailed(context.Context, uuid.UUID, string) error            { return nil }

type recordingHandler struct {
	mu       sync.Mutex
	handled  []uuid.UUID
	deadline bool
	queue    *queueStub
	done     chan struct{}
	want     int
}

func (h *recordingHandler) HandleTask(ctx context.Context, task *entity.PipelineTask) error {
	h.mu.Lock()
	h.handled = append(h.handled, task.ID)
	_, h.deadline = ctx.Deadline()
	n := len(h.handled)
	h.mu.Unlock()

	_ = h.queue.MarkDone(ctx, task.ID)
	if n == h.want {
		close(h.done)
	}
	return nil
}

func TestWorkerPool_DrainsQueue(t *testing.T) {
	queue := &queueStub{}
	const n = 5
	for i := 0; i < n; i++ {
		if err := queue.Enqueue(context.Background(), &entity.PipelineTask{
			ContractID: uuid.New(),
			Stage:      constants.StageExtractAndChunk,
		}); err != nil {
			t.Fatal(err)
		}
	}

	handler := &recordingHandler{queue: queue, done: make(chan struct{}), want: n}
	pool := NewWorkerPool(queue, handler, WorkerConfig{
		Workers:      2,
		PollInterval: time.Millisecond,
		TaskTimeout:  time.Second,
	}, nil)

	pool.Start(context.Background())
	select {
	case <-handler.done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue not drained in time")
	}
	pool.Stop()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.handled) != n {
		t.Errorf("handled %d tasks, want %d", len(handler.handled), n)
	}
	if !handler.deadline {
		t.Error("task context has no deadline")
	}

	queue.mu.Lock()
	defer queue.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, task := range queue.tasks {
		if task.Status != constants.TaskDone {
			t.Errorf("task %s finished as %s", task.ID, task.Status)
		}
		if seen[task.ID] {
			t.Errorf("task %s claimed twice", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestWorkerPool_StopWithoutWork(t *testing.T) {
	pool := NewWorkerPool(&queueStub{}, &recordingHandler{queue: &queueStub{}, done: make(chan struct{}), want: -1}, WorkerConfig{
		Workers:      3,
		PollInterval: time.Millisecond,
	}, nil)
	pool.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	pool.Stop() // must return promptly with an empty queue
}
