package pdfdoc

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
)

// HighlightOpacity is the fill alpha for highlight rectangles burned
// into the PDF. Front-end consumers tint at ~0.3 instead.
const HighlightOpacity = 0.2

// Fixed palette: one stable color per metadata field, so the same
// field always renders the same across requests.
var MetadataColors = map[string]color.SimpleColor{
	"supplier_name":       {R: 0.2, G: 0.6, B: 1.0},
	"invoice_date":        {R: 1.0, G: 0.5, B: 0.0},
	"invoice_number":      {R: 0.5, G: 0.0, B: 0.8},
	"total_amount":        {R: 1.0, G: 0.0, B: 0.0},
	"taxes_amount":        {R: 1.0, G: 0.8, B: 0.0},
	"total_without_taxes": {R: 0.8, G: 0.0, B: 0.4},
}

// Verdict colors for article rows.
var (
	ColorCorrect = color.SimpleColor{R: 0.0, G: 1.0, B: 0.0}
	ColorError   = color.SimpleColor{R: 1.0, G: 0.0, B: 0.0}
)

// HexColor renders a color as the 6-hex-digit string the API speaks.
func HexColor(c color.SimpleColor) string {
	return fmt.Sprintf("#%02x%02x%02x", toByte(c.R), toByte(c.G), toByte(c.B))
}

func toByte(v float32) int {
	return int(v*255 + 0.5)
}
