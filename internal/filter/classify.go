// Package filter narrows catalog records to skincare products and applies
// user search criteria.
package filter

import (
	"strings"

	"github.com/lukman83/skinscout/internal/models"
)

// The list is intentionally broad: lipstick, mascara and foundation are kept
// because they decide which catalog entries are ever shown.
var skincareKeywords = []string{
	"cleanser", "moisturizer", "serum", "toner", "sunscreen",
	"face", "skincare", "foundation", "lipstick", "mascara",
	"cream", "lotion", "gel", "mask", "exfoliant", "retinol",
	"vitamin c", "hyaluronic", "niacinamide", "salicylic",
	"glycolic", "peptide", "antioxidant", "spf",
}

var skincareBrands = []string{
	"cetaphil", "cerave", "neutrogena", "olay", "clinique",
	"la roche posay", "eucerin", "aveeno", "skinceuticals",
}

// IsInDomain reports whether p looks like a skincare product, checking the
// upstream type, then the name, then the brand.
func IsInDomain(p *models.Product) bool {
	if p == nil {
		return false
	}
	src := p.Source()
	if containsAny(normalize(src.Type), skincareKeywords) {
		return true
	}
	if containsAny(normalize(src.Name), skincareKeywords) {
		return true
	}
	return containsAny(normalize(src.Brand), skincareBrands)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(text string, needles []string) bool {
	if text == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
