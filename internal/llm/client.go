package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/invoice-analyst/constants"
	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/entity"
)

// Config for the structuring client.
type Config struct {
	APIKey  string
	BaseURL string  // default https://api.mistral.ai
	Model   string  // e.g. "pixtral-12b-latest"
	Timeout time.Duration
}

// Client implements InvoiceStructurer against a chat/completions
// endpoint. Sampling is pinned (temperature 0, JSON response format)
// so two calls with identical input produce the same structure.
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
		cfg.Model = "pixtral-12b-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
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

func (c *Client) Structure(ctx context.Context, req StructureRequest) (entity.StructuredInvoice, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	if len(req.Categories) == 0 {
		req.Categories = constants.AsStringSlice()
	}

	schema := BuildInvoiceJSONSchema()
	prompt := BuildStructurePrompt(req)

	c.log.Info("structure.chat.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(req.Markdown),
		"has_confirmation_row", req.ConfirmationRow != nil,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     0,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "user", "content": prompt + "\n\nJSON Schema:\n" + mustJSON(schema)},
		},
	}

	raw, err := c.post(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+"/v1/chat/completions", body)
	if err != nil {
		c.log.Error("structure.chat.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return entity.StructuredInvoice{}, nil, fmt.Errorf("%w: request timed out: %w", common.ErrStructuringFailed, err)
		}
		return entity.StructuredInvoice{}, nil, fmt.Errorf("%w: %w", common.ErrStructuringFailed, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return entity.StructuredInvoice{}, raw, fmt.Errorf("%w: decode response: %w", common.ErrStructuringFailed, err)
	}
	if len(cc.Choices) == 0 {
		return entity.StructuredInvoice{}, raw, fmt.Errorf("%w: no choices in response", common.ErrStructuringFailed)
	}

	doc, err := ExtractJSONObject(cc.Choices[0].Message.Content)
	if err != nil {
		return entity.StructuredInvoice{}, raw, fmt.Errorf("%w: %w", common.ErrStructuringFailed, err)
	}

	// The unsupported-layout escape hatch takes precedence over schema
	// validation: it is a well-formed refusal, not a malformed reply.
	if reason, ok := UnsupportedReason(doc); ok {
		c.log.Warn("structure.chat.unsupported_type", "req_id", rid, "reason", reason)
		return entity.StructuredInvoice{}, doc, fmt.Errorf("%w: %s", common.ErrUnsupportedInvoiceType, reason)
	}

	if err := ValidateJSONAgainstSchema(schema, doc); err != nil {
		c.log.Error("structure.chat.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.StructuredInvoice{}, doc, fmt.Errorf("%w: %w", common.ErrStructuringFailed, err)
	}

	var out entity.StructuredInvoice
	if err := json.Unmarshal(doc, &out); err != nil {
		return entity.StructuredInvoice{}, doc, fmt.Errorf("%w: unmarshal invoice: %w", common.ErrStructuringFailed, err)
	}

	c.log.Info("structure.chat.ok",
		"req_id", rid,
		"invoice_number", out.InvoiceNumber,
		"supplier", out.SupplierName,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, doc, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("structure.chat.body_close_error", "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
