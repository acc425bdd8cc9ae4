// Command extract runs the extraction pipeline against a local PDF and
// writes <name>.annotated.pdf plus <name>.json next to it.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/llm"
	"github.com/facturio/invoice-analyst/internal/ocr"
	"github.com/facturio/invoice-analyst/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	categories := flag.String("categories", "", "comma-separated category labels offered to the model")
	flag.Parse()
	if flag.NArg() != 1 {
		slog.Error("usage: extract [-categories a,b,c] <invoice.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.Mistral.APIKey == "" {
		logger.Error("missing MISTRAL_API_KEY environment variable")
		os.Exit(1)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("cannot read input", "path", path, "error", err)
		os.Exit(1)
	}

	var cats []string
	for _, c := range strings.Split(*categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
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
	result, err := p.Extract(context.Background(), pipeline.Request{
		PDF:        raw,
		FileName:   filepath.Base(path),
		Categories: cats,
	})
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))

	annotated, err := base64.StdEncoding.DecodeString(result.AnnotatedPDFBase64)
	if err != nil {
		logger.Error("cannot decode annotated pdf, skipping", "error", err)
	} else if err := os.WriteFile(base+".annotated.pdf", annotated, 0o644); err != nil {
		logger.Error("cannot write annotated pdf", "error", err)
		os.Exit(1)
	}

	payload, _ := json.MarshalIndent(result, "", "  ")
	if err := os.WriteFile(base+".json", payload, 0o644); err != nil {
		logger.Error("cannot write result json", "error", err)
		os.Exit(1)
	}

	logger.Info("extraction complete",
		"articles", len(result.Articles),
		"annotated", base+".annotated.pdf",
		"json", base+".json")
}
