package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Highlight is one translucent rectangle, optionally carrying a hover
// note, to be burned into the output document.
type Highlight struct {
	Page           int // 1-based
	X0, Y0, X1, Y1 float64
	Color          color.SimpleColor
	Note           string
}

// BuildAnnotated returns a fresh copy of the document with the given
// highlights added as Square annotations. The input bytes are never
// modified. With no highlights the copy is still written through
// pdfcpu so repeated annotation runs stay byte-comparable.
func BuildAnnotated(raw []byte, highlights []Highlight) ([]byte, error) {
	m := map[int][]model.AnnotationRenderer{}
	for _, h := range highlights {
		m[h.Page] = append(m[h.Page], squareHighlight{h: h})
	}

	var out bytes.Buffer
	if len(m) == 0 {
		if err := api.Optimize(bytes.NewReader(raw), &out, nil); err != nil {
			return nil, fmt.Errorf("copy pdf: %w", err)
		}
		return out.Bytes(), nil
	}

	if err := api.AddAnnotationsMap(bytes.NewReader(raw), &out, m, nil); err != nil {
		return nil, fmt.Errorf("add annotations: %w", err)
	}
	return out.Bytes(), nil
}

// squareHighlight renders a Highlight as a PDF Square annotation with
// interior color and constant opacity, printable (flag bit 3).
type squareHighlight struct {
	h Highlight
}

func (s squareHighlight) RenderDict(_ *model.XRefTable, _ *types.IndirectRef) (types.Dict, error) {
	h := s.h
	d := types.Dict(map[string]types.Object{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Square"),
		"Rect":    types.NewNumberArray(h.X0, h.Y0, h.X1, h.Y1),
		"F":       types.Integer(4),
		"C":       types.NewNumberArray(float64(h.Color.R), float64(h.Color.G), float64(h.Color.B)),
		"IC":      types.NewNumberArray(float64(h.Color.R), float64(h.Color.G), float64(h.Color.B)),
		"CA":      types.Float(HighlightOpacity),
	})
	if h.Note != "" {
		d["Contents"] = types.StringLiteral(h.Note)
	}
	return d, nil
}

func (s squareHighlight) Type() model.AnnotationType { return model.AnnSquare }

func (s squareHighlight) RectString() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", s.h.X0, s.h.Y0, s.h.X1, s.h.Y1)
}

func (s squareHighlight) ID() string { return "" }

func (s squareHighlight) ContentString() string { return s.h.Note }

func (s squareHighlight) CustomTypeString() string { return "" }

func (s squareHighlight) APObjNrInt() int { return 0 }
