package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/contracts"
	"github.com/pactly/contract-analyzer/internal/repository"
	"github.com/pactly/contract-analyzer/internal/server"
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
	clauseRepo := repository.NewClauseRepository(db, log)
	searchRepo := repository.NewSearchRepository(db)
	taskRepo := repository.NewTaskRepository(db, log)

	svc := contracts.NewService(contractRepo, clauseRepo, searchRepo, taskRepo, cfg.Upload, log)
	handler := server.NewContractHandler(svc, log)
	router := server.NewRouter(handler, log)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Info("http serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	log.Info("stopped")
}
