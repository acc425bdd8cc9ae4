package entity

// StructuredInvoice is the metadata block produced by the structuring
// model. Articles keeps the raw payload, which may arrive as a list of
// objects, a list of tuples, or a single markdown table string; the
// articles package turns it into []Article.
type StructuredInvoice struct {
	InvoiceNumber     string  `json:"invoice_number"`
	InvoiceDate       string  `json:"invoice_date"`
	SupplierName      string  `json:"supplier_name"`
	SupplierAddress   string  `json:"supplier_address,omitempty"`
	TotalPackages     *int    `json:"total_packages,omitempty"`
	TotalWithoutTaxes float64 `json:"total_without_taxes"`
	TaxesAmount       float64 `json:"taxes_amount"`
	TotalAmount       float64 `json:"total_amount"`
	Articles          any     `json:"articles,omitempty"`
}

// Article is one invoice line item. JSON keys are the French column
// names the rest of the product speaks.
type Article struct {
	Reference    string   `json:"Reference,omitempty"`
	Designation  string   `json:"Désignation,omitempty"`
	UnitPrice    *float64 `json:"Prix Unitaire,omitempty"`
	Packaging    *float64 `json:"Packaging,omitempty"`
	Quantity     *float64 `json:"Quantité,omitempty"`
	Unit         string   `json:"Unité,omitempty"`
	WeightVolume string   `json:"Poids/Volume,omitempty"`
	Total        *float64 `json:"Total,omitempty"`
	Brand        string   `json:"Marque,omitempty"`
	Category     string   `json:"Catégorie,omitempty"`

	// Set only by downstream editing, never at extraction time.
	UserEdited bool `json:"userEdited,omitempty"`

	ValidationStatus string   `json:"validationStatus,omitempty"`
	MissingFields    []string `json:"missingFields,omitempty"`
}

// ColorMapping tells the consumer how to tint what it renders.
// ArticleColors[i] belongs to the i-th returned article.
type ColorMapping struct {
	MetadataColors map[string]string `json:"metadata_colors"`
	ArticleColors  []string          `json:"article_colors"`
}

// ExtractionResult is the full payload for one extraction request.
type ExtractionResult struct {
	Structured         StructuredInvoice `json:"structured"`
	Articles           []Article         `json:"articles"`
	AnnotatedPDFBase64 string            `json:"annotatedPdfBase64"`
	ColorMapping       ColorMapping      `json:"colorMapping"`
	FileName           string            `json:"fileName,omitempty"`
}
