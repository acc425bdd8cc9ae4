package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/export"
	"github.com/facturio/invoice-analyst/internal/pipeline"
	"github.com/facturio/invoice-analyst/internal/repository"
)

// Service wires the extraction pipeline and its side services into an
// HTTP API. Invoices is nil when the server runs without a database,
// in which case the persistence endpoints answer 503.
type Service struct {
	Pipeline *pipeline.Pipeline
	Invoices repository.InvoiceRepository
	Exporter *export.Service
	Config   common.ServerConfig
	Logger   *slog.Logger
}

func NewService(p *pipeline.Pipeline, repo repository.InvoiceRepository, exporter *export.Service, cfg common.ServerConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Pipeline: p, Invoices: repo, Exporter: exporter, Config: cfg, Logger: logger}
}

// Router builds the gin engine with all routes registered.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.POST("/extract", s.handleExtract)
	api.POST("/invoices", s.handleSaveInvoice)
	api.GET("/invoices", s.handleListInvoices)
	api.POST("/export", s.handleExport)

	return r
}

func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
