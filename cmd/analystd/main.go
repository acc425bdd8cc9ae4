package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/export"
	"github.com/facturio/invoice-analyst/internal/llm"
	"github.com/facturio/invoice-analyst/internal/ocr"
	"github.com/facturio/invoice-analyst/internal/pipeline"
	"github.com/facturio/invoice-analyst/internal/repository"
	"github.com/facturio/invoice-analyst/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.Mistral.APIKey == "" {
		logger.Error("missing MISTRAL_API_KEY environment variable")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var invoices repository.InvoiceRepository
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("database connect failed", "error", err)
			os.Exit(1)
		}
		defer repository.Close(pool, logger)
		if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
			logger.Error("database health failed", "error", err)
			os.Exit(1)
		}
		invoices = repository.NewInvoiceRepository(pool, logger)
	} else {
		logger.Info("DB_URL not set, persistence endpoints disabled")
	}

	p := pipeline.New(
		ocr.NewClient(ocr.Config{
			APIKey:  cfg.Mistral.APIKey,
			BaseURL: cfg.Mistral.BaseURL,
			Model:   cfg.Mistral.OCRModel,
			Timeout: cfg.Mistral.OCRTimeout,
		}, logger),
		llm.NewClient(llm.Config{
			APIKey:  cfg.Mistral.APIKey,
			BaseURL: cfg.Mistral.BaseURL,
			Model:   cfg.Mistral.StructureModel,
			Timeout: cfg.Mistral.ChatTimeout,
		}, logger),
		logger,
	)
	svc := server.NewService(p, invoices, export.NewService(logger), cfg.Server, logger)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: svc.Router(),
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
