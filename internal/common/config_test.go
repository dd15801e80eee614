package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Chunking.ChunkSize != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("chunking defaults = %+v", cfg.Chunking)
	}
	if cfg.Embedding.BatchSize != 100 || cfg.Embedding.Dimension != 1536 {
		t.Errorf("embedding defaults = %+v", cfg.Embedding)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.MaxInputChars != 400_000 || cfg.LLM.MaxOutputTokens != 4000 {
		t.Errorf("llm defaults = %+v", cfg.LLM)
	}
	if cfg.Worker.Workers != 4 || cfg.Worker.MaxAttempts != 3 {
		t.Errorf("worker defaults = %+v", cfg.Worker)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: ":9090"
chunking:
  chunk_size: 200
  overlap: 20
llm:
  timeout: 10s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SERVER_ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("env override lost: addr = %s", cfg.Server.Addr)
	}
	if cfg.Chunking.ChunkSize != 200 || cfg.Chunking.Overlap != 20 {
		t.Errorf("file values lost: %+v", cfg.Chunking)
	}
	if cfg.LLM.Timeout != 10*time.Second {
		t.Errorf("llm timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Database.DSN != "postgres://test" || cfg.LLM.APIKey != "sk-test" {
		t.Error("secrets not read from env")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		cfg.Database.DSN = "postgres://test"
		cfg.LLM.APIKey = "sk-test"
		return cfg
	}

	cfg := base()
	cfg.Database.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing DSN accepted")
	}

	cfg = base()
	cfg.LLM.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing API key accepted")
	}

	cfg = base()
	cfg.Chunking.Overlap = cfg.Chunking.ChunkSize
	if err := cfg.Validate(); err == nil {
		t.Error("overlap == chunk size accepted")
	}
}
