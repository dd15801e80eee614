package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/common"
)

// ExtractedClause is one structured clause as parsed from the model output.
type ExtractedClause struct {
	ClauseType       constants.ClauseType `json:"clause_type"`
	Title            string               `json:"title"`
	Content          string               `json:"content"`
	Summary          string               `json:"summary"`
	SectionReference *string              `json:"section_reference"`
}

// ClauseExtractionResult is the validated model output.
type ClauseExtractionResult struct {
	Clauses []ExtractedClause `json:"clauses"`
}

// Usage is the accounting for one extraction call, for the usage ledger. It
// is returned even when the call fails, so the ledger can record the attempt.
type Usage struct {
	InputTokens  int
	OutputTokens int
	Model        string
	LatencyMS    int
}

// ClauseExtractor turns raw contract text into a validated set of clauses via
// the language-model gateway.
type ClauseExtractor struct {
	provider        Provider
	maxChars        int
	maxOutputTokens int
	schema          map[string]any
	log             *slog.Logger
}

func NewClauseExtractor(provider Provider, maxChars, maxOutputTokens int, log *slog.Logger) *ClauseExtractor {
	if maxChars <= 0 {
		maxChars = 400_000
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = 4000
	}
	if log == nil {
		log = slog.Default()
	}
	return &ClauseExtractor{
		provider:        provider,
		maxChars:        maxChars,
		maxOutputTokens: maxOutputTokens,
		schema:          BuildClauseJSONSchema(),
		log:             log,
	}
}

// ExtractClauses sends (possibly truncated) raw text to the gateway and
// validates the structured result. A schema violation is a validation error,
// never retried: it means the model broke the output contract, not that the
// transport hiccuped.
func (e *ClauseExtractor) ExtractClauses(ctx context.Context, contractID uuid.UUID, rawText string) (ClauseExtractionResult, Usage, error) {
	text := rawText
	if len(text) > e.maxChars {
		cut := e.maxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
		e.log.Warn("contract text truncated before llm call",
			"contract_id", contractID,
			"original_chars", len(rawText),
			"truncated_chars", cut,
		)
	}

	req := Request{
		Messages: []Message{
			{Role: "system", Content: clauseExtractionSystem},
			{Role: "user", Content: buildClauseUserPrompt(text, e.schema)},
		},
		Temperature: 0,
		MaxTokens:   e.maxOutputTokens,
		JSONMode:    true,
	}

	e.log.Info("llm.extract_clauses.start", "contract_id", contractID, "text_chars", len(text))

	resp, err := e.provider.Complete(ctx, req)
	usage := Usage{
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Model:        resp.Model,
		LatencyMS:    resp.LatencyMS,
	}
	if err != nil {
		return ClauseExtractionResult{}, usage, err
	}

	content := []byte(resp.Content)
	if err := ValidateJSONAgainstSchema(e.schema, content); err != nil {
		e.log.Error("llm.extract_clauses.schema_validation_failed",
			"contract_id", contractID, "error", err)
		return ClauseExtractionResult{}, usage, fmt.Errorf("%w: clause extraction output: %v", common.ErrValidation, err)
	}

	var result ClauseExtractionResult
	if err := json.Unmarshal(content, &result); err != nil {
		return ClauseExtractionResult{}, usage, fmt.Errorf("%w: unmarshal clauses: %v", common.ErrValidation, err)
	}

	e.log.Info("llm.extract_clauses.ok",
		"contract_id", contractID,
		"clauses", len(result.Clauses),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)
	return result, usage, nil
}
