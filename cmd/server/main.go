package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathlight-labs/pathlight/internal/bank"
	"github.com/pathlight-labs/pathlight/internal/config"
	"github.com/pathlight-labs/pathlight/internal/monitoring"
	"github.com/pathlight-labs/pathlight/internal/narrative"
	"github.com/pathlight-labs/pathlight/internal/server"
	"github.com/pathlight-labs/pathlight/internal/store"
	"github.com/pathlight-labs/pathlight/internal/taxonomy"
)

func main() {
	logger := monitoring.NewLogger()
	metrics := monitoring.NewMetrics()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	questions, err := bank.LoadFrom(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to load question bank", "error", err)
		os.Exit(1)
	}

	clusters, err := taxonomy.LoadClustersFrom(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to load cluster taxonomy", "error", err)
		os.Exit(1)
	}

	tree, err := taxonomy.LoadTreeFrom(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to load drill-down taxonomy", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to open result store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var narrator *narrative.Generator
	if cfg.NarrativeEnabled {
		client := narrative.NewOllamaClient(cfg.NarrativeURL, cfg.NarrativeModel, cfg.NarrativeTimeout)
		narrator = narrative.NewGenerator(narrative.NewResilientProvider(client), logger)
	}

	srv := server.New(cfg, logger, metrics, questions, clusters, tree, st, narrator)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	go func() {
		slog.Info("Starting server",
			"port", cfg.Port,
			"bank_size", len(questions),
			"clusters", len(clusters),
			"narrative_enabled", cfg.NarrativeEnabled,
		)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
