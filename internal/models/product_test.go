package models

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestProductDefaults(t *testing.T) {
	p := NewProduct(Source{Name: "  ", Brand: "", Type: "\t", Category: " "})

	assert.Equal(t, DefaultName, p.Name())
	assert.Equal(t, DefaultBrand, p.Brand())
	assert.Equal(t, DefaultType, p.Type())
	assert.Equal(t, DefaultDescription, p.Description())
	assert.Equal(t, DefaultCategory, p.Category())
	assert.NotNil(t, p.Colors())
	assert.NotNil(t, p.Concerns())
	assert.False(t, p.HasName())
	assert.False(t, p.HasValidData())

	img, ok := p.ImageURL()
	assert.False(t, ok)
	assert.Empty(t, img)
}

func TestProductTrimsPresentFields(t *testing.T) {
	p := NewProduct(Source{Name: " Hydrating Serum ", Brand: " Acme", ImageURL: " https://img/x.png "})

	assert.Equal(t, "Hydrating Serum", p.Name())
	assert.Equal(t, "Acme", p.Brand())
	img, ok := p.ImageURL()
	assert.True(t, ok)
	assert.Equal(t, "https://img/x.png", img)
	assert.True(t, p.HasValidData())
}

func TestProductPrice(t *testing.T) {
	tests := []struct {
		raw  FlexText
		want float64
	}{
		{"$23.50", 23.5},
		{"16.99", 16.99},
		{"free", 0},
		{"", 0},
		{"1.2.3", 0},
		{" 7 USD ", 7},
	}
	for _, tt := range tests {
		t.Run(string(tt.raw), func(t *testing.T) {
			p := NewProduct(Source{Price: tt.raw})
			assert.InDelta(t, tt.want, p.Price(), 1e-9)
		})
	}
}

func TestProductRating(t *testing.T) {
	assert.Equal(t, 0.0, NewProduct(Source{Rating: ptr(6.0)}).Rating())
	assert.Equal(t, 0.0, NewProduct(Source{Rating: ptr(-1)}).Rating())
	assert.Equal(t, 0.0, NewProduct(Source{}).Rating())
	assert.Equal(t, 4.2, NewProduct(Source{Rating: ptr(4.2)}).Rating())
}

func TestProductSetters(t *testing.T) {
	p := NewProduct(Source{Price: "12"})

	p.SetPrice(-3)
	assert.Equal(t, 12.0, p.Price())
	p.SetPrice(9.5)
	assert.Equal(t, 9.5, p.Price())

	p.SetRating(7)
	assert.Equal(t, 0.0, p.Rating())
	p.SetRating(3.5)
	assert.Equal(t, 3.5, p.Rating())

	p.SetConcerns([]string{" Acne", "", "DRYNESS", "acne", "  "})
	assert.Equal(t, []string{"acne", "dryness"}, p.Concerns())
	assert.True(t, p.HasConcern("Dryness "))
	assert.False(t, p.HasConcern("aging"))

	p.SetConcerns(nil)
	assert.Empty(t, p.Concerns())
}

func TestProductID(t *testing.T) {
	t.Run("upstream id wins", func(t *testing.T) {
		p := NewProduct(Source{ID: "1048", Name: "Serum"})
		assert.Equal(t, "1048", p.ID())
	})

	t.Run("fallback is stable", func(t *testing.T) {
		a := NewProduct(Source{Name: "Hydrating  Serum", Brand: "Acme Labs"})
		b := NewProduct(Source{Name: "Hydrating  Serum", Brand: "Acme Labs"})
		assert.Equal(t, a.ID(), b.ID())
		assert.Regexp(t, `^Hydrating_Serum_Acme_Labs_[0-9a-f]{8}$`, a.ID())
	})

	t.Run("fallback uses placeholders", func(t *testing.T) {
		p := NewProduct(Source{})
		assert.Regexp(t, `^unknown_brand_[0-9a-f]{8}$`, p.ID())
	})

	t.Run("different image gives different token", func(t *testing.T) {
		a := NewProduct(Source{Name: "Serum", Brand: "Acme", ImageURL: "a.png"})
		b := NewProduct(Source{Name: "Serum", Brand: "Acme", ImageURL: "b.png"})
		assert.NotEqual(t, a.ID(), b.ID())
	})
}

func TestProductEqual(t *testing.T) {
	a := NewProduct(Source{ID: "7", Name: "A"})
	b := NewProduct(Source{ID: "7", Name: "B"})
	c := NewProduct(Source{ID: "8", Name: "A"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestProductUnmarshalJSON(t *testing.T) {
	data := `[
		{"id": 495, "name": "Moisturizing Cream", "brand": "cerave", "product_type": "cream",
		 "price": "16.99", "rating": 4.5, "image_link": "", "product_colors": null},
		{"id": null, "name": "Serum", "price": null, "rating": null},
		{"id": "abc", "price": 12.5, "product_colors": [{"hex_value": "#FFF", "colour_name": ""}]},
		null
	]`

	var products []*Product
	require.NoError(t, json.Unmarshal([]byte(data), &products))
	require.Len(t, products, 4)

	assert.Equal(t, "495", products[0].ID())
	assert.Equal(t, 16.99, products[0].Price())
	assert.Equal(t, 4.5, products[0].Rating())
	assert.Empty(t, products[0].Colors())

	assert.Equal(t, 0.0, products[1].Price())
	assert.Equal(t, 0.0, products[1].Rating())

	assert.Equal(t, "abc", products[2].ID())
	assert.Equal(t, 12.5, products[2].Price())
	require.Len(t, products[2].Colors(), 1)
	assert.Equal(t, "#FFF", products[2].Colors()[0].Hex())
	assert.Equal(t, DefaultColorName, products[2].Colors()[0].Name())

	assert.Nil(t, products[3])
}

func TestProductUnmarshalAbsorbsBadlyTypedFields(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		assert func(t *testing.T, p *Product)
	}{
		{"numeric name", `{"id": 1, "name": 12345}`, func(t *testing.T, p *Product) {
			assert.Equal(t, "12345", p.Name())
		}},
		{"boolean id", `{"id": true, "name": "Serum", "brand": "Acme"}`, func(t *testing.T, p *Product) {
			assert.True(t, strings.HasPrefix(p.ID(), "Serum_Acme_"))
		}},
		{"object brand", `{"id": 2, "brand": {"en": "Acme"}}`, func(t *testing.T, p *Product) {
			assert.Equal(t, DefaultBrand, p.Brand())
		}},
		{"string rating", `{"id": 3, "rating": "4.5"}`, func(t *testing.T, p *Product) {
			assert.Equal(t, 4.5, p.Rating())
		}},
		{"junk rating", `{"id": 4, "rating": "great"}`, func(t *testing.T, p *Product) {
			assert.Equal(t, 0.0, p.Rating())
		}},
		{"nan rating", `{"id": 5, "rating": "NaN"}`, func(t *testing.T, p *Product) {
			assert.Equal(t, 0.0, p.Rating())
		}},
		{"array type", `{"id": 6, "product_type": ["serum"]}`, func(t *testing.T, p *Product) {
			assert.Equal(t, DefaultType, p.Type())
		}},
		{"boolean price", `{"id": 7, "price": false}`, func(t *testing.T, p *Product) {
			assert.Equal(t, 0.0, p.Price())
		}},
		{"colors not a list", `{"id": 8, "product_colors": "red"}`, func(t *testing.T, p *Product) {
			assert.Empty(t, p.Colors())
		}},
		{"bad color entry", `{"id": 9, "product_colors": [5, {"hex_value": 255, "colour_name": "Red"}]}`, func(t *testing.T, p *Product) {
			require.Len(t, p.Colors(), 1)
			assert.Equal(t, "255", p.Colors()[0].Hex())
			assert.Equal(t, "Red", p.Colors()[0].Name())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			require.NoError(t, json.Unmarshal([]byte(tt.data), &p))
			tt.assert(t, &p)
		})
	}
}

func TestProductUnmarshalRejectsNonObject(t *testing.T) {
	var p Product
	assert.Error(t, json.Unmarshal([]byte(`"just text"`), &p))
}

func TestFavoriteFlagConcurrentWithMarshal(t *testing.T) {
	p := NewProduct(Source{ID: "1", Name: "Serum"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.SetFavorite(j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := json.Marshal(p)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestFallbackIDStableAcrossDecodes(t *testing.T) {
	data := []byte(`{"name": "Face Wash", "brand": "Acme"}`)

	var a, b Product
	require.NoError(t, json.Unmarshal(data, &a))
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, a.ID(), b.ID())
}

func TestProductMarshalJSON(t *testing.T) {
	p := NewProduct(Source{ID: "1", Name: "Serum", Price: "$10"})
	p.SetConcerns([]string{"acne"})
	p.SetFavorite(true)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var view map[string]any
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "1", view["id"])
	assert.Equal(t, DefaultBrand, view["brand"])
	assert.Equal(t, 10.0, view["price"])
	assert.Equal(t, true, view["is_favorite"])
	assert.NotContains(t, view, "image_url")
}

func TestFavoriteRecordRoundTrip(t *testing.T) {
	p := NewProduct(Source{ID: "42", Name: "Toner", Type: "toner", Price: "8", Rating: ptr(4), ImageURL: "i.png"})

	rec := NewFavoriteRecord(p, true)
	assert.Equal(t, FavoriteRecord{ID: "42", Name: "Toner", ProductType: "toner", Price: 8, IsFavorite: true, ImageURL: "i.png", Rating: 4}, rec)

	back := rec.ToProduct()
	assert.True(t, back.Equal(p))
	assert.True(t, back.IsFavorite())
	assert.Equal(t, 8.0, back.Price())
	assert.Equal(t, 4.0, back.Rating())
}
