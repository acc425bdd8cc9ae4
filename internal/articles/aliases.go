package articles

import (
	"strings"

	"github.com/facturio/invoice-analyst/internal/entity"
)

// fieldAliases maps the key spellings models and users actually
// produce onto the canonical column names. Lookup is case- and
// accent-insensitive on the normalized form below.
var fieldAliases = map[string]string{
	"reference":     entity.FieldReference,
	"ref":           entity.FieldReference,
	"designation":   entity.FieldDesignation,
	"description":   entity.FieldDesignation,
	"prix unitaire": entity.FieldUnitPrice,
	"prix_unitaire": entity.FieldUnitPrice,
	"unit price":    entity.FieldUnitPrice,
	"unit_price":    entity.FieldUnitPrice,
	"pu":            entity.FieldUnitPrice,
	"packaging":     entity.FieldPackaging,
	"colisage":      entity.FieldPackaging,
	"quantite":      entity.FieldQuantity,
	"quantity":      entity.FieldQuantity,
	"qte":           entity.FieldQuantity,
	"unite":         entity.FieldUnit,
	"unit":          entity.FieldUnit,
	"poids/volume":  entity.FieldWeightVolume,
	"poids":         entity.FieldWeightVolume,
	"volume":        entity.FieldWeightVolume,
	"weight/volume": entity.FieldWeightVolume,
	"total":         entity.FieldTotal,
	"montant":       entity.FieldTotal,
	"line_total":    entity.FieldTotal,
	"marque":        entity.FieldBrand,
	"brand":         entity.FieldBrand,
	"categorie":     entity.FieldCategory,
	"category":      entity.FieldCategory,
}

// CanonicalKey resolves a raw payload key to its canonical column
// name. The bool reports whether the key is known.
func CanonicalKey(raw string) (string, bool) {
	c, ok := fieldAliases[normalizeKey(raw)]
	return c, ok
}

var accentFolder = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a",
	"î", "i", "ï", "i",
	"ô", "o", "û", "u", "ù", "u",
	"ç", "c",
)

func normalizeKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return accentFolder.Replace(s)
}
