package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/facturio/invoice-analyst/internal/entity"
)

// handleExport renders an extraction result as an XLSX download. POST
// because the workbook is built from the submitted payload, which may
// carry user edits that were never persisted.
func (s *Service) handleExport(c *gin.Context) {
	var result entity.ExtractionResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	xlsx, err := s.Exporter.InvoiceXLSX(&result)
	if err != nil {
		s.Logger.Error("export.request.failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	name := result.FileName
	if name == "" {
		name = "invoice"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx)
}
