package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StageResult is the envelope threaded between chained stages: identifiers and
// small metadata only. Bulk content (raw text, chunk lists) is never threaded;
// the next stage re-reads it from the store.
type StageResult struct {
	ContractID  uuid.UUID `json:"contract_id"`
	ClauseCount int       `json:"clause_count,omitempty"`
}

// EncodeEnvelope serializes the envelope for the durable task payload.
func EncodeEnvelope(env StageResult) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode stage envelope: %w", err)
	}
	return b, nil
}

// DecodeEnvelope parses a task payload back into an envelope. An empty payload
// yields a zero envelope with just the fallback contract id.
func DecodeEnvelope(payload []byte, fallbackContractID uuid.UUID) (StageResult, error) {
	env := StageResult{ContractID: fallbackContractID}
	if len(payload) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return env, fmt.Errorf("decode stage envelope: %w", err)
	}
	if env.ContractID == uuid.Nil {
		env.ContractID = fallbackContractID
	}
	return env, nil
}
