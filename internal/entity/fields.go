package entity

import "strconv"

// Canonical article column names, in table order. Tuple-shaped article
// payloads are decoded positionally against this order.
const (
	FieldReference    = "Reference"
	FieldDesignation  = "Désignation"
	FieldUnitPrice    = "Prix Unitaire"
	FieldPackaging    = "Packaging"
	FieldQuantity     = "Quantité"
	FieldUnit         = "Unité"
	FieldWeightVolume = "Poids/Volume"
	FieldTotal        = "Total"
	FieldBrand        = "Marque"
	FieldCategory     = "Catégorie"
)

// ArticleColumns is the canonical column order.
var ArticleColumns = []string{
	FieldReference,
	FieldDesignation,
	FieldUnitPrice,
	FieldPackaging,
	FieldQuantity,
	FieldUnit,
	FieldWeightVolume,
	FieldTotal,
	FieldBrand,
	FieldCategory,
}

// FieldValue is one populated article field, flattened for matching
// against source text. Number is set for numeric columns.
type FieldValue struct {
	Key    string
	Text   string
	Number *float64
}

// LineFields returns the populated fields expected to appear verbatim
// on the article's source line, in canonical column order. Brand and
// category are model-inferred labels and are deliberately excluded.
func (a Article) LineFields() []FieldValue {
	var fs []FieldValue
	add := func(key, text string, num *float64) {
		if text == "" && num == nil {
			return
		}
		fs = append(fs, FieldValue{Key: key, Text: text, Number: num})
	}
	add(FieldReference, a.Reference, nil)
	add(FieldDesignation, a.Designation, nil)
	add(FieldUnitPrice, formatNum(a.UnitPrice), a.UnitPrice)
	add(FieldPackaging, formatNum(a.Packaging), a.Packaging)
	add(FieldQuantity, formatNum(a.Quantity), a.Quantity)
	add(FieldUnit, a.Unit, nil)
	add(FieldWeightVolume, a.WeightVolume, nil)
	add(FieldTotal, formatNum(a.Total), a.Total)
	return fs
}

// IsEmpty reports whether every field of the article is blank.
func (a Article) IsEmpty() bool {
	return a.Reference == "" && a.Designation == "" &&
		a.UnitPrice == nil && a.Packaging == nil && a.Quantity == nil &&
		a.Unit == "" && a.WeightVolume == "" && a.Total == nil &&
		a.Brand == "" && a.Category == ""
}

func formatNum(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
