package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/facturio/invoice-analyst/internal/entity"
)

// Service produces XLSX bytes for validated extractions.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// InvoiceXLSX returns an XLSX workbook for one extraction: the article
// table in canonical column order plus a totals block underneath.
func (s *Service) InvoiceXLSX(result *entity.ExtractionResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoice"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	inv := result.Structured
	header := [][2]string{
		{"Fournisseur", inv.SupplierName},
		{"Numéro de facture", inv.InvoiceNumber},
		{"Date", inv.InvoiceDate},
	}
	row := 1
	for _, h := range header {
		_ = f.SetCellValue(sheet, cell(1, row), h[0])
		_ = f.SetCellValue(sheet, cell(2, row), h[1])
		row++
	}
	row++

	headerRow := row
	for i, col := range entity.ArticleColumns {
		_ = f.SetCellValue(sheet, cell(i+1, headerRow), col)
	}
	row++

	for _, a := range result.Articles {
		vals := []any{
			a.Reference, a.Designation, deref(a.UnitPrice), deref(a.Packaging),
			deref(a.Quantity), a.Unit, a.WeightVolume, deref(a.Total),
			a.Brand, a.Category,
		}
		for i, v := range vals {
			if v == nil {
				continue
			}
			_ = f.SetCellValue(sheet, cell(i+1, row), v)
		}
		row++
	}
	row++

	totals := [][2]any{
		{"Total HT", inv.TotalWithoutTaxes},
		{"TVA", inv.TaxesAmount},
		{"Total TTC", inv.TotalAmount},
	}
	for _, t := range totals {
		_ = f.SetCellValue(sheet, cell(len(entity.ArticleColumns)-1, row), t[0])
		_ = f.SetCellValue(sheet, cell(len(entity.ArticleColumns), row), t[1])
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 40)
	_ = f.SetColWidth(sheet, "C", "J", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"invoice_number", inv.InvoiceNumber,
		"articles", len(result.Articles),
		"duration_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
