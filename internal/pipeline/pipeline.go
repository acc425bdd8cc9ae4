package pipeline

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/invoice-analyst/internal/articles"
	"github.com/facturio/invoice-analyst/internal/entity"
	"github.com/facturio/invoice-analyst/internal/llm"
	"github.com/facturio/invoice-analyst/internal/match"
	"github.com/facturio/invoice-analyst/internal/ocr"
	"github.com/facturio/invoice-analyst/internal/pdfdoc"
)

const defaultWorkers = 4

// Pipeline coordinates the extraction stages: text recovery, model
// structuring, article normalization, per-article validation, and
// highlight rendering.
type Pipeline struct {
	OCR     ocr.TextRecognizer
	LLM     llm.InvoiceStructurer
	Log     *slog.Logger
	Workers int
}

func New(recognizer ocr.TextRecognizer, structurer llm.InvoiceStructurer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{OCR: recognizer, LLM: structurer, Log: logger, Workers: defaultWorkers}
}

// Request is one extraction job.
type Request struct {
	PDF             []byte
	FileName        string
	ConfirmationRow *entity.Article
	Categories      []string
}

// Extract runs the full pipeline on one PDF. OCR, structuring, and
// article normalization failures abort the request; an unreadable or
// text-less PDF does not. In that degraded mode every article is
// reported as an error and the original bytes come back unannotated.
func (p *Pipeline) Extract(ctx context.Context, req Request) (entity.ExtractionResult, error) {
	reqID := uuid.New()
	start := time.Now()
	p.Log.Info("pipeline.extract.start",
		"req_id", reqID, "file", req.FileName, "bytes", len(req.PDF))

	doc, err := pdfdoc.Load(req.PDF)
	if err != nil {
		p.Log.Warn("pipeline.extract.doc_degraded", "req_id", reqID, "err", err)
		doc = &pdfdoc.Document{Raw: req.PDF}
	}

	ocrRes, err := p.OCR.Recognize(ctx, req.PDF)
	if err != nil {
		p.Log.Error("pipeline.extract.ocr_failed", "req_id", reqID, "err", err)
		return entity.ExtractionResult{}, err
	}

	markdown := ocrRes.Markdown
	if len(ocrRes.Pages) > 1 {
		markdown = ocr.StripRepeatedLines(markdown, len(ocrRes.Pages))
	}

	structured, _, err := p.LLM.Structure(ctx, llm.StructureRequest{
		Markdown:        markdown,
		ConfirmationRow: req.ConfirmationRow,
		Categories:      req.Categories,
	})
	if err != nil {
		p.Log.Error("pipeline.extract.structure_failed", "req_id", reqID, "err", err)
		return entity.ExtractionResult{}, err
	}

	arts, err := articles.Normalize(structured.Articles)
	if err != nil {
		p.Log.Error("pipeline.extract.articles_failed", "req_id", reqID, "err", err)
		return entity.ExtractionResult{}, err
	}
	arts = restoreDuplicates(arts, ocr.TableRows(markdown))
	structured.Articles = nil

	verdicts := p.validateAll(ctx, doc, arts)
	if err := ctx.Err(); err != nil {
		return entity.ExtractionResult{}, err
	}

	colors := make([]string, len(arts))
	var highlights []pdfdoc.Highlight
	for i, v := range verdicts {
		arts[i].ValidationStatus = string(v.verdict.Status)
		arts[i].MissingFields = v.verdict.MissingFields

		c := pdfdoc.ColorCorrect
		if v.verdict.Status == match.StatusError {
			c = pdfdoc.ColorError
		}
		colors[i] = pdfdoc.HexColor(c)

		if v.line < 0 {
			continue
		}
		l := doc.Lines[v.line]
		highlights = append(highlights, pdfdoc.Highlight{
			Page: l.Page,
			X0:   l.X0, Y0: l.Y0, X1: l.X1, Y1: l.Y1,
			Color: c,
			Note:  highlightNote(arts[i], v.verdict),
		})
	}

	metaColors := map[string]string{}
	for _, f := range metadataOrder {
		val := metadataValue(structured, f)
		if val == "" {
			continue
		}
		c := pdfdoc.MetadataColors[f]
		metaColors[f] = pdfdoc.HexColor(c)
		if sp, ok := doc.FindValueSpan(val); ok {
			highlights = append(highlights, pdfdoc.Highlight{
				Page: sp.Page,
				X0:   sp.X0, Y0: sp.Y0, X1: sp.X1, Y1: sp.Y1,
				Color: c,
				Note:  f,
			})
		}
	}

	annotated, err := pdfdoc.BuildAnnotated(req.PDF, highlights)
	if err != nil {
		p.Log.Warn("pipeline.extract.annotate_degraded", "req_id", reqID, "err", err)
		annotated = req.PDF
	}

	p.Log.Info("pipeline.extract.ok",
		"req_id", reqID,
		"pages", len(ocrRes.Pages),
		"articles", len(arts),
		"highlights", len(highlights),
		"duration_ms", time.Since(start).Milliseconds())

	return entity.ExtractionResult{
		Structured:         structured,
		Articles:           arts,
		AnnotatedPDFBase64: base64.StdEncoding.EncodeToString(annotated),
		ColorMapping: entity.ColorMapping{
			MetadataColors: metaColors,
			ArticleColors:  colors,
		},
		FileName: req.FileName,
	}, nil
}

type articleVerdict struct {
	line    int // index into doc.Lines, -1 when unmatched
	verdict match.Verdict
}

// validateAll matches every article against the document concurrently.
// When the same reference occurs more than once, the k-th occurrence
// takes the k-th candidate line, so repeated lines each get their own
// highlight. Occurrence ranks are assigned before the workers start,
// which keeps the result independent of scheduling.
func (p *Pipeline) validateAll(ctx context.Context, doc *pdfdoc.Document, arts []entity.Article) []articleVerdict {
	occurrence := make([]int, len(arts))
	seen := map[string]int{}
	for i, a := range arts {
		key := a.Reference + "\x00" + a.Designation
		occurrence[i] = seen[key]
		seen[key]++
	}

	out := make([]articleVerdict, len(arts))
	workers := p.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = validateOne(doc, arts[i], occurrence[i])
			}
		}()
	}
	for i := range arts {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return out
		}
	}
	close(jobs)
	wg.Wait()
	return out
}

func validateOne(doc *pdfdoc.Document, a entity.Article, occurrence int) articleVerdict {
	cands := doc.ArticleCandidates(a.Reference, a.Designation)
	if occurrence >= len(cands) {
		var missing []string
		for _, f := range a.LineFields() {
			missing = append(missing, f.Key)
		}
		return articleVerdict{
			line:    -1,
			verdict: match.Verdict{Status: match.StatusError, MissingFields: missing},
		}
	}
	line := cands[occurrence]
	return articleVerdict{line: line, verdict: match.Validate(a, doc.Lines[line].Text)}
}

// restoreDuplicates re-expands article lists that the model collapsed.
// If a reference appears on more source table rows than in the decoded
// articles, copies are inserted right after the first occurrence.
func restoreDuplicates(arts []entity.Article, rows []string) []entity.Article {
	if len(rows) == 0 {
		return arts
	}
	rowCount := map[string]int{}
	for _, row := range rows {
		if ref := firstCell(row); ref != "" {
			rowCount[ref]++
		}
	}
	haveCount := map[string]int{}
	for _, a := range arts {
		if a.Reference != "" {
			haveCount[a.Reference]++
		}
	}

	out := make([]entity.Article, 0, len(arts))
	expanded := map[string]bool{}
	for _, a := range arts {
		out = append(out, a)
		ref := a.Reference
		if ref == "" || expanded[ref] {
			continue
		}
		expanded[ref] = true
		for extra := rowCount[ref] - haveCount[ref]; extra > 0; extra-- {
			out = append(out, a)
		}
	}
	return out
}

func firstCell(row string) string {
	for _, cell := range strings.Split(row, "|") {
		if c := strings.TrimSpace(cell); c != "" {
			return c
		}
	}
	return ""
}

var metadataOrder = []string{
	"supplier_name",
	"invoice_date",
	"invoice_number",
	"total_amount",
	"taxes_amount",
	"total_without_taxes",
}

func metadataValue(s entity.StructuredInvoice, field string) string {
	switch field {
	case "supplier_name":
		return s.SupplierName
	case "invoice_date":
		return s.InvoiceDate
	case "invoice_number":
		return s.InvoiceNumber
	case "total_amount":
		return formatAmount(s.TotalAmount)
	case "taxes_amount":
		return formatAmount(s.TaxesAmount)
	case "total_without_taxes":
		return formatAmount(s.TotalWithoutTaxes)
	}
	return ""
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func highlightNote(a entity.Article, v match.Verdict) string {
	label := a.Reference
	if label == "" {
		label = a.Designation
	}
	if v.Status == match.StatusCorrect {
		return label
	}
	return label + " unverified: " + strings.Join(v.MissingFields, ", ")
}
