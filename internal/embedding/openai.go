package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pactly/contract-analyzer/internal/common"
)

// OpenAIConfig configures the embeddings gateway client.
type OpenAIConfig struct {
	APIKey  string // if empty, falls back to env OPENAI_API_KEY
	BaseURL string // default https://api.openai.com/v1
	Model   string // default text-embedding-3-small
	Timeout time.Duration
}

type OpenAIGateway struct {
	cfg  OpenAIConfig
	http *http.Client
	log  *slog.Logger
}

func NewOpenAIGateway(cfg OpenAIConfig, log *slog.Logger) *OpenAIGateway {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &OpenAIGateway{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

func (g *OpenAIGateway) Name() string  { return "openai" }
func (g *OpenAIGateway) Model() string { return g.cfg.Model }

func (g *OpenAIGateway) EmbedBatch(ctx context.Context, texts []string) ([]BatchItem, error) {
	body, err := json.Marshal(map[string]any{
		"model": g.cfg.Model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(g.cfg.BaseURL, "/") + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, common.Transient(fmt.Errorf("embeddings http error: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.Transient(fmt.Errorf("read embeddings response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("embeddings status %d: %s", resp.StatusCode, string(data))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode >= 500 {
			return nil, common.Transient(err)
		}
		return nil, err
	}

	var out struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}

	items := make([]BatchItem, 0, len(out.Data))
	for _, d := range out.Data {
		items = append(items, BatchItem{Index: d.Index, Vector: d.Embedding})
	}

	g.log.Info("embeddings batch done",
		"texts", len(texts),
		"total_tokens", out.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}
