package llm

import "context"

// Message is one chat message sent to the gateway.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call.
type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
	// JSONMode asks the gateway for JSON-constrained output when supported.
	JSONMode bool
}

// Response is the gateway's reply plus the accounting the usage ledger needs.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	LatencyMS    int
}

// Provider is the capability abstraction over a hosted model. Implementations
// own transport-level retry; callers see either a result or a classified
// error (transient vs permanent).
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}
