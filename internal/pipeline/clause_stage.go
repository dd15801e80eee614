package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/entity"
	"github.com/pactly/contract-analyzer/internal/llm"
	"github.com/pactly/contract-analyzer/internal/repository"
)

// ClauseStage is stage 2: run LLM clause extraction against the persisted raw
// text, record the usage ledger entry, and persist the clauses. Re-running
// replaces the previous clause set.
type ClauseStage struct {
	Contracts repository.ContractRepository
	Clauses   repository.ClauseRepository
	UsageLogs repository.UsageLogRepository
	Extractor *llm.ClauseExtractor
	Provider  string
	Logger    *slog.Logger
}

func (s *ClauseStage) Name() constants.PipelineStage {
	return constants.StageExtractClauses
}

func (s *ClauseStage) Run(ctx context.Context, env StageResult) (StageResult, error) {
	contract, err := s.Contracts.GetByID(ctx, env.ContractID)
	if err != nil {
		return env, fmt.Errorf("load contract: %w", err)
	}
	if contract.RawText == nil || *contract.RawText == "" {
		return env, fmt.Errorf("%w: contract %s has no extracted text", common.ErrInvalidInput, contract.ID)
	}

	result, usage, err := s.Extractor.ExtractClauses(ctx, contract.ID, *contract.RawText)
	if err != nil {
		// A transient transport failure will be retried, so the call is not
		// accounted yet; a validation failure is terminal and is.
		if !common.IsTransient(err) {
			s.recordUsage(ctx, contract, usage, false, err.Error())
		}
		return env, fmt.Errorf("extract clauses: %w", err)
	}
	s.recordUsage(ctx, contract, usage, true, "")

	rows := make([]entity.Clause, 0, len(result.Clauses))
	for _, c := range result.Clauses {
		rows = append(rows, entity.Clause{
			ClauseType:       c.ClauseType,
			Title:            c.Title,
			Content:          c.Content,
			Summary:          c.Summary,
			SectionReference: c.SectionReference,
		})
	}
	if err := s.Clauses.BulkCreate(ctx, contract.ID, rows); err != nil {
		return env, fmt.Errorf("persist clauses: %w", err)
	}

	s.Logger.Info("pipeline.extract_clauses.ok",
		"contract_id", contract.ID,
		"clauses", len(rows),
	)
	return StageResult{ContractID: contract.ID, ClauseCount: len(rows)}, nil
}

// recordUsage appends the ledger entry. Ledger writes are observability only:
// a failure here is logged and swallowed so it cannot mask the stage outcome.
func (s *ClauseStage) recordUsage(ctx context.Context, contract *entity.Contract, usage llm.Usage, success bool, errMsg string) {
	rec := &entity.LLMUsageLog{
		ContractID:   &contract.ID,
		Provider:     s.Provider,
		Model:        usage.Model,
		Operation:    "clause_extraction",
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		CostUSD:      llm.EstimateCostUSD(usage.Model, usage.InputTokens, usage.OutputTokens, s.Logger),
		LatencyMS:    usage.LatencyMS,
		Success:      success,
	}
	if errMsg != "" {
		rec.ErrorMessage = &errMsg
	}
	if err := s.UsageLogs.Create(ctx, rec); err != nil {
		s.Logger.Error("usage log write failed", "contract_id", contract.ID, "error", err)
	}
}
