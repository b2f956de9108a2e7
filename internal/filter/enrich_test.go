package filter

import (
	"math/rand/v2"
	"testing"

	"github.com/lukman83/skinscout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnricher(seed uint64) *Enricher {
	return NewEnricher(rand.NewPCG(seed, seed+1), nil)
}

func TestEnrichFillsMissingFields(t *testing.T) {
	e := newTestEnricher(1)

	for i := 0; i < 200; i++ {
		p := models.NewProduct(models.Source{Name: "Serum"})
		e.Enrich(p)

		assert.GreaterOrEqual(t, p.Price(), 5.0)
		assert.Less(t, p.Price(), 50.0)
		assert.GreaterOrEqual(t, p.Rating(), 3.0)
		assert.Less(t, p.Rating(), 5.0)

		concerns := p.Concerns()
		require.NotEmpty(t, concerns)
		assert.LessOrEqual(t, len(concerns), 3)
		seen := map[string]bool{}
		for _, c := range concerns {
			assert.Contains(t, ConcernVocabulary, c)
			assert.False(t, seen[c], "duplicate concern %q", c)
			seen[c] = true
		}
	}
}

func TestEnrichIsIdempotentOnPopulatedFields(t *testing.T) {
	e := newTestEnricher(2)
	rating := 4.0
	p := models.NewProduct(models.Source{Name: "Toner", Price: "12.0", Rating: &rating})
	p.SetConcerns([]string{"oiliness"})

	e.Enrich(p)
	e.Enrich(p)

	assert.Equal(t, 12.0, p.Price())
	assert.Equal(t, 4.0, p.Rating())
	assert.Equal(t, []string{"oiliness"}, p.Concerns())
}

func TestEnrichSecondPassKeepsFirstValues(t *testing.T) {
	e := newTestEnricher(3)
	p := models.NewProduct(models.Source{Name: "Mask"})

	e.Enrich(p)
	price, rating, concerns := p.Price(), p.Rating(), p.Concerns()
	e.Enrich(p)

	assert.Equal(t, price, p.Price())
	assert.Equal(t, rating, p.Rating())
	assert.Equal(t, concerns, p.Concerns())
}

func TestEnrichNil(t *testing.T) {
	assert.NotPanics(t, func() { newTestEnricher(4).Enrich(nil) })
}

type panicSource struct{}

func (panicSource) Uint64() uint64 { panic("entropy exhausted") }

func TestEnrichSwallowsFaults(t *testing.T) {
	e := NewEnricher(panicSource{}, nil)
	p := models.NewProduct(models.Source{Name: "Gel", Price: "9"})

	assert.NotPanics(t, func() { e.Enrich(p) })
	assert.Equal(t, 9.0, p.Price())
	assert.Equal(t, 0.0, p.Rating())
}
