package ocr

import (
	"context"
	"time"
)

// PageText is the recovered content of one PDF page.
type PageText struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Result is the recovered text for a whole document, pages in
// document order.
type Result struct {
	Pages    []PageText
	Markdown string // pages joined in order
	Duration time.Duration
}

// TextRecognizer is Stage 1: PDF bytes -> text/markdown.
type TextRecognizer interface {
	Recognize(ctx context.Context, pdfBytes []byte) (Result, error)
}
