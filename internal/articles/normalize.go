// Package articles turns the structuring model's raw `articles`
// payload into a uniform, ordered list of typed records. The payload
// shape varies run to run: a list of field-keyed objects, a list of
// positional tuples, or a single markdown table string. Shape is
// detected structurally and dispatched to one decoder per variant.
package articles

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/facturio/invoice-analyst/constants"
	"github.com/facturio/invoice-analyst/internal/common"
	"github.com/facturio/invoice-analyst/internal/entity"
)

// Normalize decodes the raw articles payload. Guarantees on success:
// output order matches input order, every all-empty row is dropped,
// and the result is never empty (an empty input yields one blank
// placeholder record so there is always a row to review).
func Normalize(raw any) ([]entity.Article, error) {
	arts, err := decode(raw)
	if err != nil {
		return nil, err
	}

	out := make([]entity.Article, 0, len(arts))
	for _, a := range arts {
		if a.IsEmpty() {
			continue
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		out = append(out, entity.Article{})
	}
	return out, nil
}

func decode(raw any) ([]entity.Article, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return DecodeMarkdownTable(v)
	case []any:
		arts := make([]entity.Article, 0, len(v))
		for i, row := range v {
			switch r := row.(type) {
			case map[string]any:
				arts = append(arts, decodeMapping(r))
			case []any:
				arts = append(arts, decodeTuple(r))
			default:
				return nil, fmt.Errorf("%w: row %d has type %T", common.ErrArticleShape, i, row)
			}
		}
		return arts, nil
	case []map[string]any:
		arts := make([]entity.Article, 0, len(v))
		for _, r := range v {
			arts = append(arts, decodeMapping(r))
		}
		return arts, nil
	default:
		return nil, fmt.Errorf("%w: payload has type %T", common.ErrArticleShape, raw)
	}
}

// decodeMapping folds a field-keyed object onto canonical columns.
// Unknown keys are ignored; values in numeric columns that cannot be
// read as numbers become null rather than failing the row.
func decodeMapping(m map[string]any) entity.Article {
	var a entity.Article
	for k, v := range m {
		key, ok := CanonicalKey(k)
		if !ok {
			continue
		}
		setField(&a, key, v)
	}
	return a
}

// decodeTuple maps positional values onto the canonical column order.
func decodeTuple(row []any) entity.Article {
	var a entity.Article
	for i, v := range row {
		if i >= len(entity.ArticleColumns) {
			break
		}
		setField(&a, entity.ArticleColumns[i], v)
	}
	return a
}

func setField(a *entity.Article, key string, v any) {
	switch key {
	case entity.FieldReference:
		a.Reference = toString(v)
	case entity.FieldDesignation:
		a.Designation = toString(v)
	case entity.FieldUnitPrice:
		a.UnitPrice = toNumber(v)
	case entity.FieldPackaging:
		a.Packaging = toNumber(v)
	case entity.FieldQuantity:
		a.Quantity = toNumber(v)
	case entity.FieldUnit:
		a.Unit = toString(v)
	case entity.FieldWeightVolume:
		a.WeightVolume = toString(v)
	case entity.FieldTotal:
		a.Total = toNumber(v)
	case entity.FieldBrand:
		a.Brand = toString(v)
	case entity.FieldCategory:
		raw := toString(v)
		if cat, ok := constants.Canonicalize(raw); ok {
			a.Category = string(cat)
		} else {
			a.Category = raw
		}
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func toNumber(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}
