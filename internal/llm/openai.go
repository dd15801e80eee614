package llm

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

// OpenAIConfig configures the chat-completions client.
type OpenAIConfig struct {
	APIKey  string // if empty, falls back to env OPENAI_API_KEY
	BaseURL string // default https://api.openai.com/v1
	Model   string // e.g. "gpt-4o-mini"
	Timeout time.Duration
}

type OpenAIClient struct {
	cfg  OpenAIConfig
	http *http.Client
	log  *slog.Logger
}

func NewOpenAIClient(cfg OpenAIConfig, log *slog.Logger) *OpenAIClient {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &OpenAIClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

// Complete implements Provider over chat/completions.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	c.log.Info("llm.complete.start",
		"model", c.cfg.Model,
		"temp", req.Temperature,
		"messages", len(req.Messages),
		"max_tokens", req.MaxTokens,
		"json_mode", req.JSONMode,
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": req.Temperature,
		"messages":    req.Messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.JSONMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.complete.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Response{}, err
	}

	var cc struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return Response{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return Response{}, fmt.Errorf("no choices in openai response")
	}

	resp := Response{
		Content:      strings.TrimSpace(cc.Choices[0].Message.Content),
		InputTokens:  cc.Usage.PromptTokens,
		OutputTokens: cc.Usage.CompletionTokens,
		Model:        cc.Model,
		LatencyMS:    int(time.Since(start).Milliseconds()),
	}
	if resp.Model == "" {
		resp.Model = c.cfg.Model
	}

	c.log.Info("llm.complete.ok",
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"elapsed_ms", resp.LatencyMS,
	)
	return resp, nil
}

func (c *OpenAIClient) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection resets are worth retrying.
		return nil, common.Transient(fmt.Errorf("openai http error: %w", err))
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("openai response body close error", "error", cerr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.Transient(fmt.Errorf("read openai response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("openai status %d: %s", resp.StatusCode, string(data))
		if isTransientStatus(resp.StatusCode) {
			return nil, common.Transient(err)
		}
		return nil, err
	}
	return data, nil
}

// isTransientStatus classifies gateway HTTP statuses: rate limits, timeouts
// and server errors are retried; auth and malformed-request errors are not.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	}
	return code >= 500
}
