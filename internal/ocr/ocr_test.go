package ocr

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/facturio/invoice-analyst/internal/common"
)

func TestOCR(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "OCR Suite")
}

var _ = Describe("StripRepeatedLines", func() {
	It("removes page headers beyond the first occurrence", func() {
		in := "FOURNISSEUR SA\n| R1 | Bread |\nFOURNISSEUR SA\n| R2 | Milk |\nFOURNISSEUR SA"
		out := StripRepeatedLines(in, 3)
		Expect(out).To(Equal("FOURNISSEUR SA\n| R1 | Bread |\n| R2 | Milk |"))
	})

	It("keeps lines repeated fewer times than the cutoff", func() {
		in := "a\nb\na"
		Expect(StripRepeatedLines(in, 3)).To(Equal(in))
	})

	It("never strips blank lines", func() {
		in := "a\n\nb\n\nc"
		Expect(StripRepeatedLines(in, 2)).To(Equal(in))
	})
})

var _ = Describe("TableRows", func() {
	It("returns data rows without header or separator", func() {
		md := "intro text\n" +
			"| Ref | Désignation |\n" +
			"|---|---|\n" +
			"| R1 | Bread |\n" +
			"| R2 | Milk |\n" +
			"closing text"
		Expect(TableRows(md)).To(Equal([]string{"| R1 | Bread |", "| R2 | Milk |"}))
	})

	It("handles multiple tables, discarding each header", func() {
		md := "| H1 |\n|---|\n| a |\n\ntext\n\n| H2 |\n|---|\n| b |"
		Expect(TableRows(md)).To(Equal([]string{"| a |", "| b |"}))
	})

	It("returns nothing for text without tables", func() {
		Expect(TableRows("no tables here")).To(BeEmpty())
	})
})

var _ = Describe("Client", func() {
	var (
		srv    *httptest.Server
		status int
		body   string
		result Result
		err    error
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = `{"pages":[{"index":0,"markdown":"page one"},{"index":1,"markdown":"page two"}]}`
	})

	JustBeforeEach(func() {
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/ocr"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		DeferCleanup(srv.Close)

		c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
		result, err = c.Recognize(context.Background(), []byte("%PDF-1.4 fake"))
	})

	When("the service answers normally", func() {
		It("returns the pages in order", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Pages).To(HaveLen(2))
			Expect(result.Pages[0].Markdown).To(Equal("page one"))
		})

		It("joins the page markdown", func() {
			Expect(result.Markdown).To(Equal("page one\n\npage two"))
		})
	})

	When("the service answers with an error status", func() {
		BeforeEach(func() {
			status = http.StatusBadGateway
			body = `{"error":"upstream"}`
		})

		It("fails with the unavailability error", func() {
			Expect(err).To(MatchError(common.ErrOCRUnavailable))
		})
	})

	When("the service answers with garbage", func() {
		BeforeEach(func() {
			body = "not json"
		})

		It("fails with the unavailability error", func() {
			Expect(err).To(MatchError(common.ErrOCRUnavailable))
		})
	})
})
