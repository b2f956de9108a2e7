package filter

import (
	"strings"

	"github.com/lukman83/skinscout/internal/models"
	"go.uber.org/zap"
)

// Criteria describes one search. Zero values disable the matching filter.
type Criteria struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Concerns []string
}

// Predicate accepts or rejects a single record.
type Predicate func(p *models.Product) bool

// All combines predicates with logical AND, short-circuiting in order.
func All(preds ...Predicate) Predicate {
	return func(p *models.Product) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// MatchQuery accepts when query is blank or appears in the name or brand,
// case-insensitively.
func MatchQuery(query string) Predicate {
	blank := strings.TrimSpace(query) == ""
	q := strings.ToLower(query)
	return func(p *models.Product) bool {
		if blank {
			return true
		}
		return strings.Contains(strings.ToLower(p.Name()), q) ||
			strings.Contains(strings.ToLower(p.Brand()), q)
	}
}

// MatchCategory accepts when category is empty or is a case-insensitive
// substring of the product type.
func MatchCategory(category string) Predicate {
	c := strings.ToLower(category)
	return func(p *models.Product) bool {
		if c == "" {
			return true
		}
		return strings.Contains(strings.ToLower(p.Type()), c)
	}
}

// MatchPrice accepts prices inside the inclusive range; nil bounds are open.
func MatchPrice(min, max *float64) Predicate {
	return func(p *models.Product) bool {
		price := p.Price()
		if min != nil && price < *min {
			return false
		}
		if max != nil && price > *max {
			return false
		}
		return true
	}
}

// MatchConcerns accepts records tagged with every required concern.
func MatchConcerns(required []string) Predicate {
	return func(p *models.Product) bool {
		for _, c := range required {
			if !p.HasConcern(c) {
				return false
			}
		}
		return true
	}
}

// Engine runs the skincare gate, enrichment and criteria over fetched records.
type Engine struct {
	enricher *Enricher
	logger   *zap.Logger
}

func NewEngine(enricher *Enricher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if enricher == nil {
		enricher = NewEnricher(nil, logger)
	}
	return &Engine{enricher: enricher, logger: logger}
}

// Filter returns the in-domain records matching c, in input order.
// Surviving candidates are enriched in place before criteria are applied.
func (e *Engine) Filter(records []*models.Product, c Criteria) []*models.Product {
	preds := []Predicate{MatchQuery(c.Query), MatchCategory(c.Category), MatchPrice(c.MinPrice, c.MaxPrice)}
	if len(c.Concerns) > 0 {
		preds = append(preds, MatchConcerns(c.Concerns))
	}
	return e.run(records, All(preds...))
}

// SkincareOnly gates and enriches records without applying any criteria.
func (e *Engine) SkincareOnly(records []*models.Product) []*models.Product {
	return e.run(records, func(*models.Product) bool { return true })
}

func (e *Engine) run(records []*models.Product, match Predicate) (out []*models.Product) {
	out = make([]*models.Product, 0, len(records))
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("filtering aborted, returning partial result",
				zap.Int("matched", len(out)),
				zap.Int("total", len(records)),
				zap.Any("panic", r))
		}
	}()

	for _, p := range records {
		if p == nil || !p.HasName() {
			continue
		}
		if !IsInDomain(p) {
			continue
		}
		e.enricher.Enrich(p)
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByConcerns keeps records carrying every required concern. No
// required concerns matches every non-nil record.
func FilterByConcerns(records []*models.Product, concerns []string) []*models.Product {
	out := make([]*models.Product, 0, len(records))
	match := MatchConcerns(concerns)
	for _, p := range records {
		if p != nil && match(p) {
			out = append(out, p)
		}
	}
	return out
}
