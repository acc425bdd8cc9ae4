package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/facturio/invoice-analyst/internal/entity"
	"github.com/facturio/invoice-analyst/internal/repository"
)

type saveInvoiceRequest struct {
	Structured entity.StructuredInvoice `json:"structured"`
	Articles   []entity.Article         `json:"articles"`
	FileName   string                   `json:"fileName"`
}

// handleSaveInvoice persists a reviewed extraction. The payload is the
// extraction result after any user edits, not a raw upload.
func (s *Service) handleSaveInvoice(c *gin.Context) {
	if s.Invoices == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})
		return
	}
	var req saveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Structured.SupplierName == "" || req.Structured.InvoiceNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supplier_name and invoice_number are required"})
		return
	}

	id, err := s.Invoices.SaveExtraction(c.Request.Context(), &repository.SaveExtractionRequest{
		Structured: req.Structured,
		Articles:   req.Articles,
		FileName:   req.FileName,
	})
	if err != nil {
		s.Logger.Error("invoices.save.failed", "invoice_number", req.Structured.InvoiceNumber, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Service) handleListInvoices(c *gin.Context) {
	if s.Invoices == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})
		return
	}
	list, err := s.Invoices.ListInvoices(c.Request.Context(), c.Query("supplier"))
	if err != nil {
		s.Logger.Error("invoices.list.failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": list})
}
