package llm

import (
	"context"
	"log/slog"

	"github.com/pactly/contract-analyzer/internal/common"
)

// RetryingProvider decorates a Provider with retry-on-transient-error at the
// gateway-call boundary. Permanent errors pass through untouched.
type RetryingProvider struct {
	inner Provider
	cfg   common.RetryConfig
	log   *slog.Logger
}

func WithRetry(inner Provider, cfg common.RetryConfig, log *slog.Logger) *RetryingProvider {
	if log == nil {
		log = slog.Default()
	}
	return &RetryingProvider{inner: inner, cfg: cfg, log: log}
}

func (p *RetryingProvider) Name() string { return p.inner.Name() }

func (p *RetryingProvider) Complete(ctx context.Context, req Request) (Response, error) {
	var resp Response
	err := common.Retry(ctx, p.log, p.cfg, "llm_complete", func() error {
		var callErr error
		resp, callErr = p.inner.Complete(ctx, req)
		return callErr
	})
	return resp, err
}
