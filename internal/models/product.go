package models

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	DefaultName        = "Unknown Product"
	DefaultBrand       = "Unknown Brand"
	DefaultType        = "beauty"
	DefaultDescription = "No description available"
	DefaultCategory    = "General"
	DefaultColorHex    = "#000000"
	DefaultColorName   = "Unknown Color"
)

var (
	nonPriceChars = regexp.MustCompile(`[^\d.]`)
	whitespace    = regexp.MustCompile(`\s+`)

	// fallbackNamespace scopes the UUIDv5 tokens used for id-less records.
	fallbackNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://makeup-api.herokuapp.com/products"))
)

// FlexID accepts both numeric and string identifiers from upstream JSON.
// The zero value means the source did not provide an id; booleans, objects
// and arrays are treated the same way.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	*f = FlexID(strings.TrimSpace(string(scalarText(data))))
	return nil
}

// FlexText keeps upstream text verbatim, accepting JSON strings and numbers.
// Any other JSON type is treated as absent.
type FlexText string

func (f *FlexText) UnmarshalJSON(data []byte) error {
	*f = FlexText(scalarText(data))
	return nil
}

// scalarText returns the text of a JSON string or the literal of a JSON
// number, and "" for everything else.
func scalarText(data []byte) string {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return ""
	}
	switch c := s[0]; {
	case c == '"':
		var str string
		if err := json.Unmarshal([]byte(s), &str); err != nil {
			return ""
		}
		return str
	case c == '-' || (c >= '0' && c <= '9'):
		return s
	default:
		return ""
	}
}

// flexFloat decodes numbers and numeric strings. Anything else is absent.
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	f.value = nil
	text := strings.TrimSpace(scalarText(data))
	if text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	f.value = &v
	return nil
}

type ProductColor struct {
	HexValue   string `json:"hex_value"`
	ColourName string `json:"colour_name"`
}

func (c *ProductColor) UnmarshalJSON(data []byte) error {
	var raw struct {
		HexValue   FlexText `json:"hex_value"`
		ColourName FlexText `json:"colour_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ProductColor{HexValue: string(raw.HexValue), ColourName: string(raw.ColourName)}
	return nil
}

func (c ProductColor) Hex() string {
	if strings.TrimSpace(c.HexValue) == "" {
		return DefaultColorHex
	}
	return strings.TrimSpace(c.HexValue)
}

func (c ProductColor) Name() string {
	if strings.TrimSpace(c.ColourName) == "" {
		return DefaultColorName
	}
	return strings.TrimSpace(c.ColourName)
}

// Source is a catalog item exactly as the upstream API described it.
// Every field may be missing.
type Source struct {
	ID            FlexID         `json:"id"`
	Name          string         `json:"name"`
	Brand         string         `json:"brand"`
	Type          string         `json:"product_type"`
	Description   string         `json:"description"`
	ImageURL      string         `json:"image_link"`
	Price         FlexText       `json:"price"`
	Rating        *float64       `json:"rating"`
	Category      string         `json:"category"`
	ProductColors []ProductColor `json:"product_colors"`
}

// UnmarshalJSON decodes one upstream record. A field holding an unexpected
// JSON type is treated as absent; only a record that is not a JSON object
// fails.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            FlexID          `json:"id"`
		Name          FlexText        `json:"name"`
		Brand         FlexText        `json:"brand"`
		Type          FlexText        `json:"product_type"`
		Description   FlexText        `json:"description"`
		ImageURL      FlexText        `json:"image_link"`
		Price         FlexText        `json:"price"`
		Rating        flexFloat       `json:"rating"`
		Category      FlexText        `json:"category"`
		ProductColors json.RawMessage `json:"product_colors"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Source{
		ID:            raw.ID,
		Name:          string(raw.Name),
		Brand:         string(raw.Brand),
		Type:          string(raw.Type),
		Description:   string(raw.Description),
		ImageURL:      string(raw.ImageURL),
		Price:         raw.Price,
		Rating:        raw.Rating.value,
		Category:      string(raw.Category),
		ProductColors: decodeColors(raw.ProductColors),
	}
	return nil
}

// decodeColors keeps the well-formed entries of a color list and drops the
// rest.
func decodeColors(data json.RawMessage) []ProductColor {
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil {
		return nil
	}
	out := make([]ProductColor, 0, len(items))
	for _, item := range items {
		var c ProductColor
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Product is a normalized catalog record. All accessors are total: missing
// or malformed upstream data resolves to a documented default.
type Product struct {
	src      Source
	concerns []string
	// favorite is toggled by request handlers while others serialize p.
	favorite atomic.Bool
}

// NewProduct wraps upstream data in a Product.
func NewProduct(src Source) *Product {
	p := &Product{src: src}
	if p.src.ProductColors == nil {
		p.src.ProductColors = []ProductColor{}
	}
	return p
}

// Source returns a copy of the raw upstream fields.
func (p *Product) Source() Source {
	s := p.src
	s.ProductColors = append([]ProductColor(nil), p.src.ProductColors...)
	return s
}

// ID returns the upstream id, or a fallback derived from stable fields when
// the source omitted one. The fallback is deterministic across fetches.
func (p *Product) ID() string {
	if id := strings.TrimSpace(string(p.src.ID)); id != "" {
		return id
	}
	name := orDefault(p.src.Name, "unknown")
	brand := orDefault(p.src.Brand, "brand")
	key := strings.ToLower(name) + "|" + strings.ToLower(brand) + "|" + strings.TrimSpace(p.src.ImageURL)
	token := strings.ReplaceAll(uuid.NewSHA1(fallbackNamespace, []byte(key)).String(), "-", "")[:8]
	return whitespace.ReplaceAllString(name+"_"+brand+"_"+token, "_")
}

func (p *Product) Name() string        { return orDefault(p.src.Name, DefaultName) }
func (p *Product) Brand() string       { return orDefault(p.src.Brand, DefaultBrand) }
func (p *Product) Type() string        { return orDefault(p.src.Type, DefaultType) }
func (p *Product) Description() string { return orDefault(p.src.Description, DefaultDescription) }
func (p *Product) Category() string    { return orDefault(p.src.Category, DefaultCategory) }

// ImageURL reports false when no usable image link exists so callers can
// render a placeholder.
func (p *Product) ImageURL() (string, bool) {
	u := strings.TrimSpace(p.src.ImageURL)
	return u, u != ""
}

// Price strips everything but digits and dots from the upstream text.
// "$23.50" yields 23.5; "free", "1.2.3" and absent values yield 0.
func (p *Product) Price() float64 {
	return ParsePrice(string(p.src.Price))
}

// ParsePrice implements the price text normalization used by Product.
func ParsePrice(raw string) float64 {
	clean := nonPriceChars.ReplaceAllString(strings.TrimSpace(raw), "")
	if clean == "" {
		return 0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}

// Rating returns the upstream rating when it lies in [0,5], otherwise 0.
func (p *Product) Rating() float64 {
	if p.src.Rating == nil {
		return 0
	}
	r := *p.src.Rating
	if r < 0 || r > 5 {
		return 0
	}
	return r
}

func (p *Product) Colors() []ProductColor {
	if p.src.ProductColors == nil {
		return []ProductColor{}
	}
	return p.src.ProductColors
}

func (p *Product) Concerns() []string {
	if p.concerns == nil {
		return []string{}
	}
	return p.concerns
}

// HasConcern reports whether the normalized concern is tagged on p.
func (p *Product) HasConcern(concern string) bool {
	concern = strings.ToLower(strings.TrimSpace(concern))
	for _, c := range p.concerns {
		if c == concern {
			return true
		}
	}
	return false
}

func (p *Product) IsFavorite() bool { return p.favorite.Load() }

// HasName reports whether upstream supplied a non-blank name.
func (p *Product) HasName() bool { return strings.TrimSpace(p.src.Name) != "" }

// HasValidData reports whether both name and brand came from upstream.
func (p *Product) HasValidData() bool {
	return p.HasName() && strings.TrimSpace(p.src.Brand) != ""
}

// SetPrice ignores negative values.
func (p *Product) SetPrice(v float64) {
	if v < 0 {
		return
	}
	p.src.Price = FlexText(strconv.FormatFloat(v, 'f', -1, 64))
}

// SetRating ignores values outside [0,5].
func (p *Product) SetRating(v float64) {
	if v < 0 || v > 5 {
		return
	}
	p.src.Rating = &v
}

// SetConcerns stores concerns lowercased and trimmed, dropping blanks and
// duplicates. A nil list clears them.
func (p *Product) SetConcerns(concerns []string) {
	out := make([]string, 0, len(concerns))
	seen := make(map[string]struct{}, len(concerns))
	for _, c := range concerns {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	p.concerns = out
}

func (p *Product) SetFavorite(favorite bool) { p.favorite.Store(favorite) }

// Equal compares resolved ids.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID() == other.ID()
}

func (p *Product) String() string {
	return fmt.Sprintf("Product{id=%q, name=%q, brand=%q, type=%q, price=%.2f, rating=%.1f, favorite=%t}",
		p.ID(), p.Name(), p.Brand(), p.Type(), p.Price(), p.Rating(), p.IsFavorite())
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var src Source
	if err := json.Unmarshal(data, &src); err != nil {
		return err
	}
	fresh := NewProduct(src)
	p.src = fresh.src
	p.concerns = nil
	p.favorite.Store(false)
	return nil
}

type productView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Brand       string         `json:"brand"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url,omitempty"`
	Price       float64        `json:"price"`
	Rating      float64        `json:"rating"`
	Category    string         `json:"category"`
	Colors      []ProductColor `json:"colors,omitempty"`
	Concerns    []string       `json:"concerns"`
	IsFavorite  bool           `json:"is_favorite"`
}

// MarshalJSON emits the resolved view, not the raw upstream fields.
func (p *Product) MarshalJSON() ([]byte, error) {
	img, _ := p.ImageURL()
	return json.Marshal(productView{
		ID:          p.ID(),
		Name:        p.Name(),
		Brand:       p.Brand(),
		Type:        p.Type(),
		Description: p.Description(),
		ImageURL:    img,
		Price:       p.Price(),
		Rating:      p.Rating(),
		Category:    p.Category(),
		Colors:      p.Colors(),
		Concerns:    p.Concerns(),
		IsFavorite:  p.IsFavorite(),
	})
}

func orDefault(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}
