package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/invoice-analyst/internal/common"
)

// Config for the hosted OCR client.
type Config struct {
	APIKey  string        // falls back to env handling in common.LoadConfig
	BaseURL string        // default https://api.mistral.ai
	Model   string        // e.g. "mistral-ocr-latest"
	Timeout time.Duration // per-request deadline
}

// Client calls the Mistral OCR endpoint. No retries at this layer:
// transient failures propagate as common.ErrOCRUnavailable.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-ocr-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type ocrResponse struct {
	Pages []PageText `json:"pages"`
}

// Recognize sends the document as a base64 data URL and returns the
// per-page markdown, pages concatenated in document order.
func (c *Client) Recognize(ctx context.Context, pdfBytes []byte) (Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("ocr.process.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"pdf_bytes", len(pdfBytes),
	)

	body := ocrRequest{
		Model: c.cfg.Model,
		Document: ocrDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdfBytes),
		},
	}
	bs, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: encode request: %w", common.ErrOCRUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/ocr", bytes.NewReader(bs))
	if err != nil {
		return Result{}, fmt.Errorf("%w: build request: %w", common.ErrOCRUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("ocr.process.send_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w: request timed out: %w", common.ErrOCRUnavailable, err)
		}
		return Result{}, fmt.Errorf("%w: %w", common.ErrOCRUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("ocr.process.body_close_error", "req_id", rid, "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		c.log.Error("ocr.process.status_error",
			"req_id", rid, "status", resp.StatusCode, "bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{}, fmt.Errorf("%w: status %d", common.ErrOCRUnavailable, resp.StatusCode)
	}

	var or ocrResponse
	if err := json.Unmarshal(raw, &or); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %w", common.ErrOCRUnavailable, err)
	}

	md := make([]string, 0, len(or.Pages))
	for _, p := range or.Pages {
		md = append(md, p.Markdown)
	}

	c.log.Info("ocr.process.ok",
		"req_id", rid,
		"pages", len(or.Pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return Result{
		Pages:    or.Pages,
		Markdown: strings.Join(md, "\n\n"),
		Duration: time.Since(start),
	}, nil
}
