package articles

import (
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/entity"
)

func TestArticles(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Articles Suite")
}

func fp(v float64) *float64 { return &v }

var _ = Describe("Normalize", func() {
	var (
		raw  any
		arts []entity.Article
		err  error
	)

	JustBeforeEach(func() {
		arts, err = Normalize(raw)
	})

	When("the payload is a list of field-keyed objects", func() {
		BeforeEach(func() {
			raw = []any{
				map[string]any{
					"Reference":     "R1",
					"Désignation":   "Tomates cerises",
					"Prix Unitaire": 12.5,
					"Quantité":      float64(4),
					"Total":         float64(50),
				},
			}
		})

		It("decodes every field", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(arts).To(HaveLen(1))
			Expect(arts[0].Reference).To(Equal("R1"))
			Expect(arts[0].Designation).To(Equal("Tomates cerises"))
			Expect(arts[0].UnitPrice).To(Equal(fp(12.5)))
			Expect(arts[0].Quantity).To(Equal(fp(4)))
			Expect(arts[0].Total).To(Equal(fp(50)))
		})
	})

	When("object keys use alias spellings", func() {
		BeforeEach(func() {
			raw = []any{
				map[string]any{
					"reference":  "R1",
					"DESIGNATION": "Pain de campagne",
					"unit_price": "3,20",
					"qte":        float64(2),
				},
			}
		})

		It("folds case and accents onto canonical columns", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(arts[0].Reference).To(Equal("R1"))
			Expect(arts[0].Designation).To(Equal("Pain de campagne"))
			Expect(arts[0].UnitPrice).To(Equal(fp(3.2)))
			Expect(arts[0].Quantity).To(Equal(fp(2)))
		})
	})

	When("the payload is a list of positional tuples", func() {
		BeforeEach(func() {
			raw = []any{
				[]any{"R1", "Tomates cerises", "12,50", "", float64(4), "kg", "", "50,00"},
				[]any{"R2", "Pain", 3.2, "", float64(1), "", "", 3.2},
			}
		})

		It("decodes against the canonical column order", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(arts).To(HaveLen(2))
			Expect(arts[0].Reference).To(Equal("R1"))
			Expect(arts[0].UnitPrice).To(Equal(fp(12.5)))
			Expect(arts[0].Unit).To(Equal("kg"))
			Expect(arts[1].Reference).To(Equal("R2"))
			Expect(arts[1].Total).To(Equal(fp(3.2)))
		})

		It("preserves input order", func() {
			Expect(arts[0].Reference).To(Equal("R1"))
			Expect(arts[1].Reference).To(Equal("R2"))
		})
	})

	When("the payload is a markdown table string", func() {
		BeforeEach(func() {
			raw = "| Ref | Désignation | PU | Pack | Qté | Unité | P/V | Total |\n" +
				"|---|---|---|---|---|---|---|---|\n" +
				"| R1 | Bread | 3,20 | | 2 | | | 6,40 |\n"
		})

		It("discards the header row", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(arts).To(HaveLen(1))
			Expect(arts[0].Reference).To(Equal("R1"))
			Expect(arts[0].Designation).To(Equal("Bread"))
			Expect(arts[0].UnitPrice).To(Equal(fp(3.2)))
			Expect(arts[0].Quantity).To(Equal(fp(2)))
			Expect(arts[0].Total).To(Equal(fp(6.4)))
		})
	})

	When("the payload mixes empty rows in", func() {
		BeforeEach(func() {
			raw = []any{
				map[string]any{"Reference": "R1"},
				map[string]any{},
				map[string]any{"Reference": "R2"},
			}
		})

		It("drops the empty rows and keeps order", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(arts).To(HaveLen(2))
			Expect(arts[0].Reference).To(Equal("R1"))
			Expect(arts[1].Reference).To(Equal("R2"))
		})
	})

	When("the payload is empty", func() {
		BeforeEach(func() {
			raw = []any{}
		})

		It("returns a single blank placeholder", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(arts).To(HaveLen(1))
			Expect(arts[0].IsEmpty()).To(BeTrue())
		})
	})

	When("the payload is nil", func() {
		BeforeEach(func() {
			raw = nil
		})

		It("returns a single blank placeholder", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(arts).To(HaveLen(1))
		})
	})

	When("the payload has an unusable shape", func() {
		BeforeEach(func() {
			raw = 42.0
		})

		It("fails with the shape error", func() {
			Expect(err).To(MatchError(common.ErrArticleShape))
		})
	})

	When("a category uses a known synonym", func() {
		BeforeEach(func() {
			raw = []any{
				map[string]any{"Reference": "R1", "Catégorie": "fruits"},
			}
		})

		It("snaps it to the canonical vocabulary", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(arts[0].Category).To(Equal("Fruits et Légumes"))
		})
	})
})

var _ = Describe("CanonicalKey", func() {
	It("resolves accented and unaccented spellings alike", func() {
		for _, raw := range []string{"Quantité", "quantite", "QTE"} {
			key, ok := CanonicalKey(raw)
			Expect(ok).To(BeTrue(), raw)
			Expect(key).To(Equal(entity.FieldQuantity))
		}
	})

	It("rejects unknown keys", func() {
		_, ok := CanonicalKey("couleur")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("EncodeMarkdownTable", func() {
	It("round-trips through DecodeMarkdownTable", func() {
		in := []entity.Article{
			{Reference: "R1", Designation: "Tomates", UnitPrice: fp(12.5), Quantity: fp(4), Total: fp(50)},
			{Reference: "R2", Designation: "Pain", UnitPrice: fp(3.2), Quantity: fp(1), Total: fp(3.2)},
		}
		out, err := DecodeMarkdownTable(EncodeMarkdownTable(in))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(in))
	})
})
