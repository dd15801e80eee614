package embedding

import "context"

// BatchItem is one vector as returned by the gateway, tagged with the position
// its input text held within the batch. The gateway may return items in any
// order.
type BatchItem struct {
	Index  int
	Vector []float32
}

// Gateway performs one remote embedding call for a batch of texts.
type Gateway interface {
	Name() string
	Model() string
	EmbedBatch(ctx context.Context, texts []string) ([]BatchItem, error)
}
