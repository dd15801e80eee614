package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pgvector/pgvector-go"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/embedding"
	"github.com/pactly/contract-analyzer/internal/repository"
)

// EmbedStage is stage 3: embed chunk contents and mark the contract
// completed. Chunks that already carry an embedding are skipped, so a
// redelivered task does not re-bill already-finished work.
type EmbedStage struct {
	Contracts repository.ContractRepository
	Chunks    repository.ChunkRepository
	Generator *embedding.Generator
	Logger    *slog.Logger
}

func (s *EmbedStage) Name() constants.PipelineStage {
	return constants.StageGenerateEmbeddings
}

func (s *EmbedStage) Run(ctx context.Context, env StageResult) (StageResult, error) {
	chunks, err := s.Chunks.GetByContractID(ctx, env.ContractID)
	if err != nil {
		return env, fmt.Errorf("load chunks: %w", err)
	}

	if len(chunks) == 0 {
		// Nothing to embed; the pipeline still completes.
		if err := s.Contracts.MarkCompleted(ctx, env.ContractID); err != nil {
			return env, fmt.Errorf("mark completed: %w", err)
		}
		s.Logger.Info("pipeline.generate_embeddings.ok", "contract_id", env.ContractID, "embedded", 0)
		return env, nil
	}

	var pending []int
	var texts []string
	for i, c := range chunks {
		if c.Embedding != nil {
			continue
		}
		pending = append(pending, i)
		texts = append(texts, c.Content)
	}

	vectors, err := s.Generator.Embed(ctx, texts)
	if err != nil {
		return env, fmt.Errorf("generate embeddings: %w", err)
	}

	for j, i := range pending {
		vec := pgvector.NewVector(vectors[j])
		if err := s.Chunks.UpdateEmbedding(ctx, chunks[i].ID, vec); err != nil {
			return env, fmt.Errorf("persist embedding for chunk %d: %w", chunks[i].ChunkIndex, err)
		}
	}

	if err := s.Contracts.MarkCompleted(ctx, env.ContractID); err != nil {
		return env, fmt.Errorf("mark completed: %w", err)
	}

	s.Logger.Info("pipeline.generate_embeddings.ok",
		"contract_id", env.ContractID,
		"embedded", len(pending),
		"skipped", len(chunks)-len(pending),
	)
	return env, nil
}
