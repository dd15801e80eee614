package llm

import (
	"fmt"
	"log/slog"

	"github.com/pactly/contract-analyzer/internal/common"
)

// NewProvider maps a configuration value to a capability instance, resolved
// once at process start. Adding a provider means adding one case here plus its
// client; callers depend only on the Provider interface.
func NewProvider(cfg common.LLMConfig, log *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		client := NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, log)
		return WithRetry(client, common.DefaultRetry, log), nil
	default:
		return nil, fmt.Errorf("%w: unsupported llm provider %q", common.ErrInvalidInput, cfg.Provider)
	}
}
