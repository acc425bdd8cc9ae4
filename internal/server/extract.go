package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/entity"
	"github.com/facturio/invoice-analyst/internal/pipeline"
)

var pdfMagic = []byte("%PDF")

// handleExtract accepts a multipart upload ("file", required PDF) with
// optional form fields:
//
//	confirmation_row  JSON-encoded article biasing the column layout
//	categories        comma-separated category labels
func (s *Service) handleExtract(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	maxBytes := int64(s.Config.MaxUploadMB) << 20
	if fh.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil || int64(len(raw)) > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit"})
		return
	}
	if !bytes.HasPrefix(raw, pdfMagic) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not a PDF"})
		return
	}

	var confirmation *entity.Article
	if v := c.PostForm("confirmation_row"); v != "" {
		var a entity.Article
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation_row is not valid JSON"})
			return
		}
		confirmation = &a
	}
	var categories []string
	if v := c.PostForm("categories"); v != "" {
		for _, cat := range strings.Split(v, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				categories = append(categories, cat)
			}
		}
	}

	result, err := s.Pipeline.Extract(c.Request.Context(), pipeline.Request{
		PDF:             raw,
		FileName:        fh.Filename,
		ConfirmationRow: confirmation,
		Categories:      categories,
	})
	if err != nil {
		s.Logger.Error("extract.request.failed", "file", fh.Filename, "err", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	dropNegativeLines(&result)
	c.JSON(http.StatusOK, result)
}

// dropNegativeLines removes credit lines (negative unit price or
// total) from the payload. Article colors are filtered in lockstep so
// they stay positionally aligned.
func dropNegativeLines(r *entity.ExtractionResult) {
	arts := r.Articles[:0]
	colors := r.ColorMapping.ArticleColors[:0]
	for i, a := range r.Articles {
		if (a.UnitPrice != nil && *a.UnitPrice < 0) || (a.Total != nil && *a.Total < 0) {
			continue
		}
		arts = append(arts, a)
		if i < len(r.ColorMapping.ArticleColors) {
			colors = append(colors, r.ColorMapping.ArticleColors[i])
		}
	}
	r.Articles = arts
	r.ColorMapping.ArticleColors = colors
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnsupportedInvoiceType),
		errors.Is(err, common.ErrArticleShape):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrOCRUnavailable),
		errors.Is(err, common.ErrStructuringFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
