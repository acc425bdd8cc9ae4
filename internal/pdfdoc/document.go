// Package pdfdoc reads line-level text geometry out of PDF bytes and
// burns highlight annotations back in. Reading uses ledongthuc/pdf
// (pure Go, row API with coordinates); writing uses pdfcpu, which can
// produce annotation dictionaries that ledongthuc/pdf cannot.
package pdfdoc

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Word is one positioned text fragment. Coordinates are PDF user
// space (origin bottom-left).
type Word struct {
	Text           string
	X0, Y0, X1, Y1 float64
}

// Line is a row of words sharing a baseline, left to right.
type Line struct {
	Page           int // 1-based
	Text           string
	Words          []Word
	X0, Y0, X1, Y1 float64
}

// Page records the media box of one page.
type Page struct {
	Number        int
	Width, Height float64
}

// Document is the per-request view of a PDF: the original bytes plus
// the line geometry used for matching. It is never mutated; the
// annotator writes a fresh copy.
type Document struct {
	Raw   []byte
	Pages []Page
	Lines []Line // reading order: page ascending, top of page first
}

// Load parses the PDF and collects line text with geometry. A PDF
// without a text layer yields a document with no lines, which is not
// an error: matching simply finds nothing.
func Load(raw []byte) (*Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc := &Document{Raw: raw}
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		w, h := pageSize(page)
		doc.Pages = append(doc.Pages, Page{Number: n, Width: w, Height: h})

		rows, err := page.GetTextByRow()
		if err != nil {
			continue // unreadable page: degrade, don't fail
		}
		lines := make([]Line, 0, len(rows))
		for _, row := range rows {
			if l, ok := buildLine(n, row); ok {
				lines = append(lines, l)
			}
		}
		// Top of page first. Row positions are Y coordinates in PDF
		// space, so bigger means higher up.
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Y0 > lines[j].Y0 })
		doc.Lines = append(doc.Lines, lines...)
	}
	return doc, nil
}

// PageSize returns the media box of a 1-based page number.
func (d *Document) PageSize(number int) (w, h float64) {
	for _, p := range d.Pages {
		if p.Number == number {
			return p.Width, p.Height
		}
	}
	return 595, 842 // A4 fallback
}

func buildLine(pageNum int, row *pdf.Row) (Line, bool) {
	l := Line{Page: pageNum}
	var parts []string
	for _, t := range row.Content {
		s := strings.TrimSpace(t.S)
		if s == "" {
			continue
		}
		w := Word{
			Text: s,
			X0:   t.X,
			Y0:   t.Y,
			X1:   t.X + t.W,
			Y1:   t.Y + t.FontSize,
		}
		if len(l.Words) == 0 {
			l.X0, l.Y0, l.X1, l.Y1 = w.X0, w.Y0, w.X1, w.Y1
		} else {
			l.X0 = min(l.X0, w.X0)
			l.Y0 = min(l.Y0, w.Y0)
			l.X1 = max(l.X1, w.X1)
			l.Y1 = max(l.Y1, w.Y1)
		}
		l.Words = append(l.Words, w)
		parts = append(parts, s)
	}
	if len(l.Words) == 0 {
		return Line{}, false
	}
	l.Text = strings.Join(parts, " ")
	return l, true
}

func pageSize(p pdf.Page) (w, h float64) {
	mb := p.V.Key("MediaBox")
	// MediaBox is inheritable; walk up if the page dict omits it.
	parent := p.V.Key("Parent")
	for mb.IsNull() && !parent.IsNull() {
		mb = parent.Key("MediaBox")
		parent = parent.Key("Parent")
	}
	if mb.IsNull() || mb.Len() < 4 {
		return 595, 842
	}
	w = mb.Index(2).Float64() - mb.Index(0).Float64()
	h = mb.Index(3).Float64() - mb.Index(1).Float64()
	return w, h
}
