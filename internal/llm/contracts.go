package llm

import (
	"context"

	"github.com/facturio/invoice-analyst/internal/entity"
)

// StructureRequest carries the recovered document text into the
// structuring model, plus an optional user-confirmed example article
// that biases the model toward the expected column layout.
type StructureRequest struct {
	Markdown        string
	ConfirmationRow *entity.Article
	Categories      []string
}

// InvoiceStructurer is Stage 2: text -> StructuredInvoice.
// The raw model JSON is returned alongside for audit logging.
type InvoiceStructurer interface {
	Structure(ctx context.Context, req StructureRequest) (entity.StructuredInvoice, []byte, error)
}
