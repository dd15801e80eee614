package contracts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/entity"
	"github.com/pactly/contract-analyzer/internal/repository"
)

// Service owns the contract lifecycle on the API side: intake, reads, and
// deletion. Processing itself happens in the worker via the task queue.
type Service struct {
	contracts repository.ContractRepository
	clauses   repository.ClauseRepository
	search    repository.SearchRepository
	tasks     repository.TaskRepository
	uploadDir string
	maxBytes  int64
	log       *slog.Logger
}

func NewService(
	contracts repository.ContractRepository,
	clauses repository.ClauseRepository,
	search repository.SearchRepository,
	tasks repository.TaskRepository,
	cfg common.UploadConfig,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		contracts: contracts,
		clauses:   clauses,
		search:    search,
		tasks:     tasks,
		uploadDir: cfg.Dir,
		maxBytes:  int64(cfg.MaxSizeMB) << 20,
		log:       log,
	}
}

// Upload validates and stores one document, records it with status pending,
// and enqueues the first pipeline stage. Nothing is written for unsupported
// types or duplicate content.
func (s *Service) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*entity.Contract, error) {
	if !constants.IsSupportedContentType(contentType) {
		return nil, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("unsupported content type %q", contentType), common.ErrUnsupportedFormat)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, common.NewAppError("FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds %d bytes", s.maxBytes), common.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, common.NewAppError("EMPTY_FILE", "uploaded file is empty", common.ErrInvalidInput)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if existing, err := s.contracts.GetByFileHash(ctx, hash); err == nil {
		s.log.Info("contracts.upload.duplicate", "contract_id", existing.ID, "file_hash", hash)
		return existing, common.ErrDuplicate
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	id := uuid.New()
	path := filepath.Join(s.uploadDir, id.String()+constants.AllowedContentTypes[contentType])
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	contract := &entity.Contract{
		ID:          id,
		Filename:    filename,
		FilePath:    path,
		FileHash:    hash,
		ContentType: contentType,
		Status:      constants.StatusPending,
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		// The row is the source of truth; drop the orphaned file.
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Warn("contracts.upload.orphan_file", "path", path, "error", rmErr)
		}
		if errors.Is(err, common.ErrDuplicate) {
			// A concurrent upload of the same bytes won the insert race.
			existing, gerr := s.contracts.GetByFileHash(ctx, hash)
			if gerr != nil {
				return nil, gerr
			}
			s.log.Info("contracts.upload.duplicate", "contract_id", existing.ID, "file_hash", hash)
			return existing, common.ErrDuplicate
		}
		return nil, err
	}

	if err := s.tasks.Enqueue(ctx, &entity.PipelineTask{
		ContractID: contract.ID,
		Stage:      constants.StageExtractAndChunk,
	}); err != nil {
		// Contract stays pending; surface the error so the client can retry
		// rather than silently leaving a row no worker will ever pick up.
		return nil, fmt.Errorf("enqueue extraction: %w", err)
	}

	s.log.Info("contracts.upload.ok",
		"contract_id", contract.ID,
		"filename", filename,
		"content_type", contentType,
		"size_bytes", len(data),
	)
	return contract, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]entity.Contract, error) {
	return s.contracts.List(ctx)
}

// Clauses returns the extracted clauses for a contract, erroring with
// ErrNotFound when the contract itself does not exist.
func (s *Service) Clauses(ctx context.Context, id uuid.UUID) ([]entity.Clause, error) {
	if _, err := s.contracts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.clauses.GetByContractID(ctx, id)
}

// SimilarChunks returns the k chunks of one contract closest to the query
// vector. The query is a vector, not text: callers embed their query with the
// same model the pipeline used, or replay a stored chunk embedding.
func (s *Service) SimilarChunks(ctx context.Context, id uuid.UUID, query []float32, k int) ([]entity.ContractChunk, error) {
	if len(query) == 0 {
		return nil, common.NewAppError("EMPTY_QUERY", "query vector is required", common.ErrInvalidInput)
	}
	if _, err := s.contracts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.search.SimilarChunks(ctx, id, pgvector.NewVector(query), k)
}

// Delete removes the contract row (chunks and clauses cascade) and then the
// stored file. A missing file is not an error.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.contracts.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(c.FilePath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("contracts.delete.file", "contract_id", id, "path", c.FilePath, "error", err)
	}
	return nil
}
