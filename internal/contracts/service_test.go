package contracts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/entity"
)

type stubContracts struct {
	rows       map[uuid.UUID]*entity.Contract
	createErr  error
	hashMisses int
}

func newStubContracts() *stubContracts {
	return &stubContracts{rows: make(map[uuid.UUID]*entity.Contract)}
}

func (s *stubContracts) Create(_ context.Context, c *entity.Contract) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.rows[c.ID] = c
	return nil
}

func (s *stubContracts) GetByID(_ context.Context, id uuid.UUID) (*entity.Contract, error) {
	if c, ok := s.rows[id]; ok {
		return c, nil
	}
	return nil, common.ErrNotFound
}

func (s *stubContracts) GetByFileHash(_ context.Context, hash string) (*entity.Contract, error) {
	if s.hashMisses > 0 {
		s.hashMisses--
		return nil, common.ErrNotFound
	}
	for _, c := range s.rows {
		if c.FileHash == hash {
			return c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *stubContracts) List(_ context.Context) ([]entity.Contract, error) {
	out := make([]entity.Contract, 0, len(s.rows))
	for _, c := range s.rows {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubContracts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *stubContracts) MarkProcessing(context.Context, uuid.UUID) error       { return nil }
func (s *stubContracts) MarkFailed(context.Context, uuid.UUID, string) error   { return nil }
func (s *stubContracts) MarkCompleted(context.Context, uuid.UUID) error        { return nil }
func (s *stubContracts) SetExtraction(context.Context, uuid.UUID, string, int, int) error {
	return nil
}

type stubClauses struct {
	byContract map[uuid.UUID][]entity.Clause
}

func (s *stubClauses) BulkCreate(_ context.Context, id uuid.UUID, cl []entity.Clause) error {
	if s.byContract == nil {
		s.byContract = make(map[uuid.UUID][]entity.Clause)
	}
	s.byContract[id] = cl
	return nil
}

func (s *stubClauses) GetByContractID(_ context.Context, id uuid.UUID) ([]entity.Clause, error) {
	return s.byContract[id], nil
}

type stubSearch struct {
	result []entity.ContractChunk
	gotK   int
}

func (s *stubSearch) SimilarChunks(_ context.Context, _ uuid.UUID, _ pgvector.Vector, k int) ([]entity.ContractChunk, error) {
	s.gotK = k
	return s.result, nil
}

type stubTasks struct {
	enqueued []*entity.PipelineTask
	err      error
}

func (s *stubTasks) Enqueue(_ context.Context, task *entity.PipelineTask) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, task)
	return nil
}

func (s *stubTasks) ClaimDue(context.Context, time.Time) (*entity.PipelineTask, error) {
	return nil, nil
}
func (s *stubTasks) MarkDone(context.Context, uuid.UUID) error                      { return nil }
func (s *stubTasks) Reschedule(context.Context, uuid.UUID, time.Time, string) error { return nil }
func (s *stubTasks) MarkFailed(context.Context, uuid.UUID, string) error            { return nil }

func newTestService(t *testing.T) (*Service, *stubContracts, *stubTasks, string) {
	t.Helper()
	dir := t.TempDir()
	contracts := newStubContracts()
	tasks := &stubTasks{}
	svc := NewService(contracts, &stubClauses{}, &stubSearch{}, tasks, common.UploadConfig{Dir: dir, MaxSizeMB: 1}, nil)
	return svc, contracts, tasks, dir
}

func TestUpload_QueuesExtraction(t *testing.T) {
	svc, contracts, tasks, dir := newTestService(t)

	c, err := svc.Upload(context.Background(), "msa.pdf", constants.ContentTypePDF, strings.NewReader("%PDF-1.4 fake body"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Status != constants.StatusPending {
		t.Errorf("status = %s, want pending", c.Status)
	}
	if c.FileHash == "" {
		t.Error("file hash not set")
	}
	if len(contracts.rows) != 1 {
		t.Errorf("got %d rows, want 1", len(contracts.rows))
	}

	data, err := os.ReadFile(filepath.Join(dir, c.ID.String()+".pdf"))
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(data) != "%PDF-1.4 fake body" {
		t.Error("stored file content differs from upload")
	}

	if len(tasks.enqueued) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks.enqueued))
	}
	if tasks.enqueued[0].Stage != constants.StageExtractAndChunk {
		t.Errorf("stage = %s, want extract_and_chunk", tasks.enqueued[0].Stage)
	}
	if tasks.enqueued[0].ContractID != c.ID {
		t.Error("task carries wrong contract id")
	}
}

func TestUpload_UnsupportedTypeWritesNothing(t *testing.T) {
	svc, contracts, tasks, dir := newTestService(t)

	_, err := svc.Upload(context.Background(), "notes.txt", "text/plain", strings.NewReader("hello"))
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if len(contracts.rows) != 0 || len(tasks.enqueued) != 0 {
		t.Error("rejected upload left state behind")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("rejected upload stored %d files", len(entries))
	}
}

func TestUpload_DuplicateContent(t *testing.T) {
	svc, _, tasks, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "a.pdf", constants.ContentTypePDF, strings.NewReader("identical bytes"))
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Upload(ctx, "b.pdf", constants.ContentTypePDF, strings.NewReader("identical bytes"))
	if !errors.Is(err, common.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	if second == nil || second.ID != first.ID {
		t.Error("duplicate did not surface the existing contract")
	}
	if len(tasks.enqueued) != 1 {
		t.Errorf("duplicate enqueued extra work: %d tasks", len(tasks.enqueued))
	}
}

func TestUpload_DuplicateInsertRace(t *testing.T) {
	svc, contracts, tasks, dir := newTestService(t)
	ctx := context.Background()

	// A concurrent upload of the same bytes commits between the hash lookup
	// and the insert: the lookup misses once, then the insert hits the unique
	// index.
	winner := &entity.Contract{
		ID:       uuid.New(),
		Filename: "first.pdf",
		FileHash: "8ca5bfb553e7ce32d7543bac5f91cdc3e28d650106da4e244c0eeb5e3a71ea64",
		Status:   constants.StatusPending,
	}
	contracts.rows[winner.ID] = winner
	contracts.hashMisses = 1
	contracts.createErr = common.ErrDuplicate

	got, err := svc.Upload(ctx, "second.pdf", constants.ContentTypePDF, strings.NewReader("identical bytes"))
	if !errors.Is(err, common.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	if got == nil || got.ID != winner.ID {
		t.Error("race loser did not surface the winning contract")
	}
	if len(tasks.enqueued) != 0 {
		t.Errorf("race loser enqueued work: %d tasks", len(tasks.enqueued))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("race loser left %d stored files", len(entries))
	}
}

func TestUpload_EmptyAndOversize(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "empty.pdf", constants.ContentTypePDF, strings.NewReader("")); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("empty upload err = %v, want ErrInvalidInput", err)
	}

	big := strings.NewReader(strings.Repeat("x", 1<<20+1))
	if _, err := svc.Upload(ctx, "big.pdf", constants.ContentTypePDF, big); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("oversize upload err = %v, want ErrInvalidInput", err)
	}
}

func TestUpload_EnqueueFailureSurfaces(t *testing.T) {
	svc, contracts, tasks, _ := newTestService(t)
	tasks.err = errors.New("queue down")

	if _, err := svc.Upload(context.Background(), "c.pdf", constants.ContentTypePDF, strings.NewReader("body")); err == nil {
		t.Fatal("expected error when enqueue fails")
	}
	// The row stays pending so a retried upload resolves as duplicate rather
	// than silently losing the document.
	if len(contracts.rows) != 1 {
		t.Errorf("got %d rows, want 1", len(contracts.rows))
	}
}

func TestDelete_RemovesStoredFile(t *testing.T) {
	svc, _, _, dir := newTestService(t)
	ctx := context.Background()

	c, err := svc.Upload(ctx, "d.pdf", constants.ContentTypePDF, strings.NewReader("to be deleted"))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d files left after delete", len(entries))
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestClauses_MissingContract(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.Clauses(context.Background(), uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSimilarChunks(t *testing.T) {
	dir := t.TempDir()
	contracts := newStubContracts()
	search := &stubSearch{result: []entity.ContractChunk{{ChunkIndex: 3, Content: "indemnity text"}}}
	svc := NewService(contracts, &stubClauses{}, search, &stubTasks{}, common.UploadConfig{Dir: dir, MaxSizeMB: 1}, nil)
	ctx := context.Background()

	c := &entity.Contract{ID: uuid.New(), FileHash: "h", Status: constants.StatusCompleted}
	contracts.rows[c.ID] = c

	got, err := svc.SimilarChunks(ctx, c.ID, []float32{0.1, 0.2}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ChunkIndex != 3 {
		t.Errorf("got %+v", got)
	}
	if search.gotK != 7 {
		t.Errorf("k = %d, want 7", search.gotK)
	}

	if _, err := svc.SimilarChunks(ctx, c.ID, nil, 5); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("empty vector err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.SimilarChunks(ctx, uuid.New(), []float32{0.1}, 5); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing contract err = %v, want ErrNotFound", err)
	}
}
