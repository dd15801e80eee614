package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pactly/contract-analyzer/internal/async"
	"github.com/pactly/contract-analyzer/internal/chunk"
	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/embedding"
	"github.com/pactly/contract-analyzer/internal/extract"
	"github.com/pactly/contract-analyzer/internal/llm"
	"github.com/pactly/contract-analyzer/internal/pipeline"
	"github.com/pactly/contract-analyzer/internal/repository"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := common.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := common.InitLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.Database, log)
	if err != nil {
		log.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, log)

	contractRepo := repository.NewContractRepository(db, log)
	chunkRepo := repository.NewChunkRepository(db, log)
	clauseRepo := repository.NewClauseRepository(db, log)
	usageRepo := repository.NewUsageLogRepository(db, log)
	taskRepo := repository.NewTaskRepository(db, log)

	chunker, err := chunk.NewChunker(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap, chunk.WordTokenizer{}, log)
	if err != nil {
		log.Error("chunker init failed", "error", err)
		os.Exit(1)
	}

	provider, err := llm.NewProvider(cfg.LLM, log)
	if err != nil {
		log.Error("llm provider init failed", "error", err)
		os.Exit(1)
	}
	clauseExtractor := llm.NewClauseExtractor(provider, cfg.LLM.MaxInputChars, cfg.LLM.MaxOutputTokens, log)

	gateway := embedding.NewOpenAIGateway(embedding.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout,
	}, log)
	generator := embedding.NewGenerator(gateway, cfg.Embedding.BatchSize, log)

	extractor := extract.NewExtractor(log)

	processor := pipeline.NewProcessor(taskRepo, contractRepo, log,
		&pipeline.ExtractChunkStage{
			Contracts: contractRepo,
			Chunks:    chunkRepo,
			Extractor: extractor,
			Chunker:   chunker,
			Logger:    log,
		},
		&pipeline.ClauseStage{
			Contracts: contractRepo,
			Clauses:   clauseRepo,
			UsageLogs: usageRepo,
			Extractor: clauseExtractor,
			Provider:  provider.Name(),
			Logger:    log,
		},
		&pipeline.EmbedStage{
			Contracts: contractRepo,
			Chunks:    chunkRepo,
			Generator: generator,
			Logger:    log,
		},
	)

	pool := async.NewWorkerPool(taskRepo, processor, async.WorkerConfig{
		Workers:      cfg.Worker.Workers,
		PollInterval: cfg.Worker.PollInterval,
		TaskTimeout:  cfg.Worker.TaskTimeout,
	}, log)

	pool.Start(ctx)
	<-ctx.Done()
	log.Info("shutting down...")
	pool.Stop()
	log.Info("stopped")
}
