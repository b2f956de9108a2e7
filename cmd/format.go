package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lukman83/skinscout/internal/models"
)

// printProductsTable prints products in a human-friendly card layout.
func printProductsTable(w io.Writer, products []*models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	for i, p := range products {
		if i > 0 {
			fmt.Fprintln(w)
		}
		name := p.Name()
		if p.IsFavorite() {
			name = "[♥] " + name
		}
		fmt.Fprintf(w, " %d. %s\n", i+1, name)
		fmt.Fprintf(w, "    Price: %s  |  Rating: %s  |  Brand: %s\n",
			formatPrice(p.Price()), formatRating(p.Rating()), p.Brand())
		fmt.Fprintf(w, "    Type: %s  |  Category: %s\n", formatType(p.Type()), formatType(p.Category()))
		if c := p.Concerns(); len(c) > 0 {
			fmt.Fprintf(w, "    Concerns: %s\n", strings.Join(c, ", "))
		}
		if desc := p.Description(); desc != models.DefaultDescription {
			fmt.Fprintf(w, "    %s\n", truncate(desc, 100))
		}
		fmt.Fprintf(w, "    id: %s\n", p.ID())
	}
}

// printProductDetail prints every resolved field of one product.
func printProductDetail(w io.Writer, p *models.Product) {
	name := p.Name()
	if p.IsFavorite() {
		name = "[♥] " + name
	}
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  Brand:    %s\n", p.Brand())
	fmt.Fprintf(w, "  Type:     %s\n", formatType(p.Type()))
	fmt.Fprintf(w, "  Category: %s\n", formatType(p.Category()))
	fmt.Fprintf(w, "  Price:    %s\n", formatPrice(p.Price()))
	fmt.Fprintf(w, "  Rating:   %s\n", formatRating(p.Rating()))
	if c := p.Concerns(); len(c) > 0 {
		fmt.Fprintf(w, "  Concerns: %s\n", strings.Join(c, ", "))
	}
	if img, ok := p.ImageURL(); ok {
		fmt.Fprintf(w, "  Image:    %s\n", img)
	} else {
		fmt.Fprintln(w, "  Image:    (none)")
	}
	if colors := p.Colors(); len(colors) > 0 {
		fmt.Fprintln(w, "  Colors:")
		for _, c := range colors {
			fmt.Fprintf(w, "    %s  %s\n", c.Hex(), c.Name())
		}
	}
	fmt.Fprintf(w, "  id:       %s\n", p.ID())
	fmt.Fprintf(w, "\n%s\n", p.Description())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProducts(w io.Writer, format string, products []*models.Product) error {
	switch format {
	case "table":
		printProductsTable(w, products)
		return nil
	case "json", "":
		return printJSON(w, products)
	default:
		return fmt.Errorf("unknown format %q (want json or table)", format)
	}
}

// formatPrice formats a price as "$12.50".
func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatRating(v float64) string {
	return fmt.Sprintf("%.1f/5", v)
}

// formatType converts "lip_liner" to "Lip Liner".
func formatType(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for j, w := range words {
		if len(w) > 0 {
			words[j] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
