package constants

import (
	"strings"
)

// Category is a product category label offered to the structuring
// model. Deployments usually override the list from their own catalog;
// this is the fallback vocabulary.
type Category string

const (
	Epicerie      Category = "Épicerie"
	Boissons      Category = "Boissons"
	Cremerie      Category = "Crèmerie"
	Boucherie     Category = "Boucherie"
	Poissonnerie  Category = "Poissonnerie"
	FruitsLegumes Category = "Fruits et Légumes"
	Boulangerie   Category = "Boulangerie"
	Surgeles      Category = "Surgelés"
	Hygiene       Category = "Hygiène"
	Emballage     Category = "Emballage"
	Autre         Category = "Autre"
)

var allCategories = []Category{
	Epicerie,
	Boissons,
	Cremerie,
	Boucherie,
	Poissonnerie,
	FruitsLegumes,
	Boulangerie,
	Surgeles,
	Hygiene,
	Emballage,
	Autre,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Autre, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"grocery":   Epicerie,
		"epicerie":  Epicerie,
		"drinks":    Boissons,
		"vins":      Boissons,
		"dairy":     Cremerie,
		"fromage":   Cremerie,
		"viande":    Boucherie,
		"meat":      Boucherie,
		"poisson":   Poissonnerie,
		"fish":      Poissonnerie,
		"legumes":   FruitsLegumes,
		"fruits":    FruitsLegumes,
		"pain":      Boulangerie,
		"frozen":    Surgeles,
		"packaging": Emballage,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Autre, false
}
