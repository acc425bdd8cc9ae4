package articles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/entity"
)

// DecodeMarkdownTable parses a markdown table into articles. The
// first non-separator row is the header and is discarded; data rows
// decode positionally against the canonical column order.
func DecodeMarkdownTable(s string) ([]entity.Article, error) {
	var arts []entity.Article
	sawHeader := false
	sawRow := false

	for _, raw := range strings.Split(s, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || !strings.HasPrefix(line, "|") {
			continue
		}
		if isSeparator(line) {
			continue
		}
		sawRow = true
		if !sawHeader {
			sawHeader = true
			continue
		}

		cells := splitCells(line)
		row := make([]any, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		arts = append(arts, decodeTuple(row))
	}

	if !sawRow {
		return nil, fmt.Errorf("%w: no table rows in string payload", common.ErrArticleShape)
	}
	return arts, nil
}

// EncodeMarkdownTable renders articles as a markdown table with the
// canonical header, the inverse of DecodeMarkdownTable.
func EncodeMarkdownTable(arts []entity.Article) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(entity.ArticleColumns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(entity.ArticleColumns)) + "\n")
	for _, a := range arts {
		cells := []string{
			a.Reference,
			a.Designation,
			numCell(a.UnitPrice),
			numCell(a.Packaging),
			numCell(a.Quantity),
			a.Unit,
			a.WeightVolume,
			numCell(a.Total),
			a.Brand,
			a.Category,
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

func numCell(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func isSeparator(line string) bool {
	for _, r := range line {
		switch r {
		case '|', '-', ':', ' ':
		default:
			return false
		}
	}
	return true
}

func splitCells(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
