package filter

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lukman83/skinscout/internal/models"
	"go.uber.org/zap"
)

// ConcernVocabulary lists the skin concerns used for synthetic tagging.
var ConcernVocabulary = []string{"acne", "dryness", "aging", "sensitivity", "oiliness", "dark spots"}

const (
	mockPriceMin  = 5.0
	mockPriceMax  = 50.0
	mockRatingMin = 3.0
	mockRatingMax = 5.0
	maxConcerns   = 3
)

// Enricher backfills missing price, rating and concerns with plausible
// random values so listings never show zero data.
type Enricher struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.Logger
}

// NewEnricher creates an Enricher. A nil src seeds from the clock.
func NewEnricher(src rand.Source, logger *zap.Logger) *Enricher {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{rng: rand.New(src), logger: logger}
}

// Enrich fills only the fields that are still empty. It never fails; a fault
// while assigning leaves the remaining fields at their defaults.
func (e *Enricher) Enrich(p *models.Product) {
	if p == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("mock enrichment failed",
				zap.String("product_id", p.ID()),
				zap.Any("panic", r))
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	if p.Price() <= 0 {
		p.SetPrice(mockPriceMin + e.rng.Float64()*(mockPriceMax-mockPriceMin))
	}
	if p.Rating() <= 0 {
		p.SetRating(mockRatingMin + e.rng.Float64()*(mockRatingMax-mockRatingMin))
	}
	if len(p.Concerns()) == 0 {
		p.SetConcerns(e.drawConcerns())
	}
}

func (e *Enricher) drawConcerns() []string {
	n := 1 + e.rng.IntN(maxConcerns)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c := ConcernVocabulary[e.rng.IntN(len(ConcernVocabulary))]
		dup := false
		for _, existing := range out {
			if existing == c {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}
