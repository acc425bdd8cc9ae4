package export

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/facturio/invoice-analyst/internal/entity"
)

func TestExport(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Export Suite")
}

var _ = Describe("InvoiceXLSX", func() {
	var (
		result *entity.ExtractionResult
		data   []byte
		err    error
	)

	BeforeEach(func() {
		price := 12.5
		total := 50.0
		result = &entity.ExtractionResult{
			Structured: entity.StructuredInvoice{
				InvoiceNumber:     "F-42",
				InvoiceDate:       "2025-03-01",
				SupplierName:      "Fournisseur SA",
				TotalWithoutTaxes: 100,
				TaxesAmount:       20,
				TotalAmount:       120,
			},
			Articles: []entity.Article{
				{Reference: "R1", Designation: "Tomates cerises", UnitPrice: &price, Total: &total},
			},
		}
	})

	JustBeforeEach(func() {
		data, err = NewService(nil).InvoiceXLSX(result)
	})

	It("produces a readable workbook", func() {
		Expect(err).NotTo(HaveOccurred())
		f, openErr := excelize.OpenReader(bytes.NewReader(data))
		Expect(openErr).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(ContainElement("Invoice"))
	})

	It("writes the invoice header block", func() {
		f, _ := excelize.OpenReader(bytes.NewReader(data))
		defer f.Close()

		v, _ := f.GetCellValue("Invoice", "B1")
		Expect(v).To(Equal("Fournisseur SA"))
		v, _ = f.GetCellValue("Invoice", "B2")
		Expect(v).To(Equal("F-42"))
	})

	It("writes the article table under the canonical header", func() {
		f, _ := excelize.OpenReader(bytes.NewReader(data))
		defer f.Close()

		v, _ := f.GetCellValue("Invoice", "A5")
		Expect(v).To(Equal(entity.FieldReference))
		v, _ = f.GetCellValue("Invoice", "A6")
		Expect(v).To(Equal("R1"))
		v, _ = f.GetCellValue("Invoice", "B6")
		Expect(v).To(Equal("Tomates cerises"))
	})
})
