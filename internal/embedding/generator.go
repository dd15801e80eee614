package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pactly/contract-analyzer/internal/common"
)

// Generator turns texts into vectors, in input order, batching gateway calls
// to respect payload limits.
type Generator struct {
	gateway   Gateway
	batchSize int
	retry     common.RetryConfig
	log       *slog.Logger
}

func NewGenerator(gateway Gateway, batchSize int, log *slog.Logger) *Generator {
	if batchSize <= 0 {
		batchSize = 100
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		gateway:   gateway,
		batchSize: batchSize,
		retry:     common.DefaultRetry,
		log:       log,
	}
}

// Embed returns one vector per input text, in input order. Each batch's
// results are re-sorted by the position the gateway reports before
// concatenation, so gateway-side reordering cannot scramble the output.
// Transient gateway errors are retried with backoff; exhaustion propagates.
func (g *Generator) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var items []BatchItem
		err := common.Retry(ctx, g.log, g.retry, "embed_batch", func() error {
			var callErr error
			items, callErr = g.gateway.EmbedBatch(ctx, batch)
			return callErr
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at %d: %w", start, err)
		}
		if len(items) != len(batch) {
			return nil, fmt.Errorf("embed batch starting at %d: got %d vectors for %d texts", start, len(items), len(batch))
		}

		sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })
		for _, item := range items {
			out = append(out, item.Vector)
		}

		g.log.Info("embedded batch",
			"batch", start/g.batchSize+1,
			"texts", len(batch),
			"model", g.gateway.Model(),
		)
	}
	return out, nil
}
