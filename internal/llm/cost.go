package llm

import "log/slog"

// modelRates is USD per 1M tokens. The table is a rough approximation kept
// for the two models this deployment actually uses.
var modelRates = map[string]struct {
	input  float64
	output float64
}{
	"gpt-4o-mini": {input: 0.15, output: 0.60},
	"gpt-4o":      {input: 2.50, output: 10.00},
}

// EstimateCostUSD returns the estimated cost for one call, or nil when the
// model is not in the pricing table. Unknown models are not billed at some
// other model's rates; the ledger records an absent estimate instead.
func EstimateCostUSD(model string, inputTokens, outputTokens int, log *slog.Logger) *float64 {
	rates, ok := modelRates[model]
	if !ok {
		if log != nil {
			log.Warn("no pricing for model, cost estimate omitted", "model", model)
		}
		return nil
	}
	cost := (float64(inputTokens)*rates.input + float64(outputTokens)*rates.output) / 1_000_000
	return &cost
}
