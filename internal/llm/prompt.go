package llm

import (
	"encoding/json"
	"strings"

	"github.com/facturio/invoice-analyst/internal/entity"
)

// BuildStructurePrompt composes the single user message for the
// structuring call: extraction rules, the output schema, an optional
// confirmation-row exemplar, and the recovered document text.
func BuildStructurePrompt(req StructureRequest) string {
	var b strings.Builder

	b.WriteString("You are an invoice parser for French supplier invoices. ")
	b.WriteString("Extract the structured data below from the OCR text and return ONLY JSON matching the provided JSON Schema.\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- 'invoice_date' in YYYY-MM-DD when possible, else as printed.\n")
	b.WriteString("- Amounts are numbers with '.' as decimal separator; never strings.\n")
	b.WriteString("- 'articles' is the line-item table. Each article is an object with exactly these keys: ")
	b.WriteString(strings.Join(entity.ArticleColumns, ", "))
	b.WriteString(". Omit keys you cannot read; never invent values.\n")
	b.WriteString("- Keep every line item, including consecutive duplicates.\n")
	b.WriteString("- Never output null. If a field is not present, omit it.\n")
	if len(req.Categories) > 0 {
		b.WriteString("- '" + entity.FieldCategory + "' must be one of: " + strings.Join(req.Categories, ", ") + ".\n")
	}
	b.WriteString("- If the document is not an invoice layout you can read reliably, return exactly ")
	b.WriteString(`{"unsupported_invoice": true, "reason": "<short reason>"} and nothing else.` + "\n")

	if req.ConfirmationRow != nil {
		if ex, err := json.Marshal(req.ConfirmationRow); err == nil {
			b.WriteString("\nThe user confirmed this example article from the same document; match its column layout for every row:\n")
			b.Write(ex)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nOCR text:\n")
	b.WriteString(req.Markdown)
	return b.String()
}
