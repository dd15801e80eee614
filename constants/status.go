package constants

// ContractStatus is the canonical processing status for rows in contracts.
type ContractStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending    ContractStatus = "pending"    // uploaded, pipeline not started
	StatusProcessing ContractStatus = "processing" // pipeline running (possibly across retries)
	StatusCompleted  ContractStatus = "completed"  // embeddings persisted, terminal
	StatusFailed     ContractStatus = "failed"     // terminal failure, see error_message
)

// PipelineStage names the durable task type for each stage of the chain.
type PipelineStage string

const (
	StageExtractAndChunk    PipelineStage = "extract_and_chunk"
	StageExtractClauses     PipelineStage = "extract_clauses"
	StageGenerateEmbeddings PipelineStage = "generate_embeddings"
)

// NextStage returns the stage that follows s in the chain, or "" for the last.
func NextStage(s PipelineStage) PipelineStage {
	switch s {
	case StageExtractAndChunk:
		return StageExtractClauses
	case StageExtractClauses:
		return StageGenerateEmbeddings
	default:
		return ""
	}
}

// TaskStatus is the queue-side state of one durable pipeline task.
type TaskStatus string

const (
	TaskQueued  TaskStatus = "QUEUED"
	TaskRunning TaskStatus = "RUNNING"
	TaskDone    TaskStatus = "DONE"
	TaskFailed  TaskStatus = "FAILED"
)
