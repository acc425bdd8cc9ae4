package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/entity"
)

func TestLLM(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "LLM Suite")
}

var _ = Describe("ExtractJSONObject", func() {
	It("passes through a bare object", func() {
		doc, err := ExtractJSONObject(`{"a":1}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc).To(Equal([]byte(`{"a":1}`)))
	})

	It("strips markdown code fences", func() {
		doc, err := ExtractJSONObject("```json\n{\"a\":1}\n```")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc).To(Equal([]byte(`{"a":1}`)))
	})

	It("ignores prose around the object", func() {
		doc, err := ExtractJSONObject(`Here you go: {"a":1} hope that helps`)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc).To(Equal([]byte(`{"a":1}`)))
	})

	It("fails when no object is present", func() {
		_, err := ExtractJSONObject("sorry, I cannot do that")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("UnsupportedReason", func() {
	It("detects the refusal reply", func() {
		reason, ok := UnsupportedReason([]byte(`{"unsupported_invoice":true,"reason":"handwritten"}`))
		Expect(ok).To(BeTrue())
		Expect(reason).To(Equal("handwritten"))
	})

	It("supplies a default reason", func() {
		reason, ok := UnsupportedReason([]byte(`{"unsupported_invoice":true}`))
		Expect(ok).To(BeTrue())
		Expect(reason).To(Equal("layout not recognized"))
	})

	It("leaves ordinary replies alone", func() {
		_, ok := UnsupportedReason([]byte(`{"invoice_number":"F-1"}`))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("BuildStructurePrompt", func() {
	It("names every article column", func() {
		p := BuildStructurePrompt(StructureRequest{Markdown: "text"})
		for _, col := range entity.ArticleColumns {
			Expect(p).To(ContainSubstring(col))
		}
	})

	It("embeds the category vocabulary when given", func() {
		p := BuildStructurePrompt(StructureRequest{Markdown: "text", Categories: []string{"Boissons", "Autre"}})
		Expect(p).To(ContainSubstring("Boissons, Autre"))
	})

	It("embeds the confirmation row as an exemplar", func() {
		row := &entity.Article{Reference: "R1", Designation: "Tomates"}
		p := BuildStructurePrompt(StructureRequest{Markdown: "text", ConfirmationRow: row})
		Expect(p).To(ContainSubstring(`"Reference":"R1"`))
	})

	It("ends with the recovered text", func() {
		p := BuildStructurePrompt(StructureRequest{Markdown: "THE OCR TEXT"})
		Expect(strings.HasSuffix(p, "THE OCR TEXT")).To(BeTrue())
	})
})

var _ = Describe("ValidateJSONAgainstSchema", func() {
	var schema map[string]any

	BeforeEach(func() {
		schema = BuildInvoiceJSONSchema()
	})

	It("accepts a complete invoice", func() {
		doc := []byte(`{
			"invoice_number": "F-1",
			"invoice_date": "2025-01-15",
			"supplier_name": "Fournisseur SA",
			"total_without_taxes": 100,
			"taxes_amount": 20,
			"total_amount": 120,
			"articles": [{"Reference": "R1"}]
		}`)
		Expect(ValidateJSONAgainstSchema(schema, doc)).To(Succeed())
	})

	It("accepts articles as a markdown table string", func() {
		doc := []byte(`{
			"invoice_number": "F-1",
			"invoice_date": "2025-01-15",
			"supplier_name": "Fournisseur SA",
			"total_amount": 120,
			"articles": "| Ref |\n|---|\n| R1 |"
		}`)
		Expect(ValidateJSONAgainstSchema(schema, doc)).To(Succeed())
	})

	It("rejects an invoice missing required fields", func() {
		doc := []byte(`{"supplier_name": "Fournisseur SA"}`)
		Expect(ValidateJSONAgainstSchema(schema, doc)).NotTo(Succeed())
	})
})

var _ = Describe("Client", func() {
	var (
		srv     *httptest.Server
		content string
		status  int
		inv     entity.StructuredInvoice
		err     error
	)

	BeforeEach(func() {
		status = http.StatusOK
		content = `{
			"invoice_number": "F-42",
			"invoice_date": "2025-03-01",
			"supplier_name": "Fournisseur SA",
			"total_without_taxes": 100,
			"taxes_amount": 20,
			"total_amount": 120,
			"articles": [{"Reference": "R1", "Désignation": "Tomates"}]
		}`
	})

	JustBeforeEach(func() {
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))

			var req map[string]any
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			Expect(req["temperature"]).To(Equal(float64(0)))
			Expect(req["response_format"]).To(Equal(map[string]any{"type": "json_object"}))

			w.WriteHeader(status)
			reply := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": content}},
				},
			}
			_ = json.NewEncoder(w).Encode(reply)
		}))
		DeferCleanup(srv.Close)

		c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
		inv, _, err = c.Structure(context.Background(), StructureRequest{Markdown: "ocr text"})
	})

	When("the model returns a valid invoice", func() {
		It("decodes the metadata", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.InvoiceNumber).To(Equal("F-42"))
			Expect(inv.SupplierName).To(Equal("Fournisseur SA"))
			Expect(inv.TotalAmount).To(Equal(120.0))
		})

		It("keeps the raw articles payload for normalization", func() {
			Expect(inv.Articles).NotTo(BeNil())
		})
	})

	When("the model returns the reply inside a code fence", func() {
		BeforeEach(func() {
			content = "```json\n" + content + "\n```"
		})

		It("still decodes the invoice", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.InvoiceNumber).To(Equal("F-42"))
		})
	})

	When("the model refuses the layout", func() {
		BeforeEach(func() {
			content = `{"unsupported_invoice": true, "reason": "not an invoice"}`
		})

		It("fails with the unsupported-type error", func() {
			Expect(err).To(MatchError(common.ErrUnsupportedInvoiceType))
		})

		It("carries the model's reason", func() {
			Expect(err.Error()).To(ContainSubstring("not an invoice"))
		})
	})

	When("the model returns schema-violating JSON", func() {
		BeforeEach(func() {
			content = `{"hello": "world"}`
		})

		It("fails with the structuring error", func() {
			Expect(err).To(MatchError(common.ErrStructuringFailed))
		})
	})

	When("the service answers with an error status", func() {
		BeforeEach(func() {
			status = http.StatusServiceUnavailable
		})

		It("fails with the structuring error", func() {
			Expect(err).To(MatchError(common.ErrStructuringFailed))
		})
	})
})

var _ = Describe("default categories", func() {
	It("reach the prompt when the request has none", func() {
		var prompt string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if len(req.Messages) > 0 {
				prompt = req.Messages[0].Content
			}
			fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"unsupported_invoice\":true}"}}]}`)
		}))
		defer srv.Close()

		c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
		_, _, _ = c.Structure(context.Background(), StructureRequest{Markdown: "text"})
		Expect(prompt).To(ContainSubstring("Épicerie"))
	})
})
