package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/chunk"
	"github.com/pactly/contract-analyzer/internal/entity"
	"github.com/pactly/contract-analyzer/internal/extract"
	"github.com/pactly/contract-analyzer/internal/repository"
)

// ExtractChunkStage is stage 1: set status processing, extract raw text, chunk
// it, and persist both. Re-running it replaces any partial chunk set rather
// than tripping the (contract_id, chunk_index) uniqueness constraint.
type ExtractChunkStage struct {
	Contracts repository.ContractRepository
	Chunks    repository.ChunkRepository
	Extractor extract.TextExtractor
	Chunker   *chunk.Chunker
	Logger    *slog.Logger
}

func (s *ExtractChunkStage) Name() constants.PipelineStage {
	return constants.StageExtractAndChunk
}

func (s *ExtractChunkStage) Run(ctx context.Context, env StageResult) (StageResult, error) {
	// Short transaction: make the status visible before the heavy work.
	if err := s.Contracts.MarkProcessing(ctx, env.ContractID); err != nil {
		return env, fmt.Errorf("mark processing: %w", err)
	}

	contract, err := s.Contracts.GetByID(ctx, env.ContractID)
	if err != nil {
		return env, fmt.Errorf("load contract: %w", err)
	}

	res, err := s.Extractor.Extract(ctx, contract.FilePath, contract.ContentType)
	if err != nil {
		return env, fmt.Errorf("extract text: %w", err)
	}

	chunks := s.Chunker.Chunk(res.RawText)
	rows := make([]entity.ContractChunk, 0, len(chunks))
	for _, c := range chunks {
		rows = append(rows, entity.ContractChunk{
			ChunkIndex: c.Index,
			Content:    c.Content,
			TokenCount: c.TokenCount,
		})
	}
	if err := s.Chunks.BulkCreate(ctx, contract.ID, rows); err != nil {
		return env, fmt.Errorf("persist chunks: %w", err)
	}

	totalTokens := chunk.TotalTokens(chunks)
	if err := s.Contracts.SetExtraction(ctx, contract.ID, res.RawText, res.PageCount, totalTokens); err != nil {
		return env, fmt.Errorf("persist extraction: %w", err)
	}

	s.Logger.Info("pipeline.extract_and_chunk.ok",
		"contract_id", contract.ID,
		"pages", res.PageCount,
		"chunks", len(chunks),
		"tokens", totalTokens,
	)
	return StageResult{ContractID: contract.ID}, nil
}
