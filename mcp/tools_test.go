package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lukman83/skinscout/internal/catalog"
	"github.com/lukman83/skinscout/internal/favorites"
	"github.com/lukman83/skinscout/internal/filter"
	"github.com/lukman83/skinscout/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	all    []*models.Product
	allErr error
	brands map[string][]*models.Product
}

func (s *stubCatalog) Name() string { return "stub" }
func (s *stubCatalog) AllProducts(context.Context) ([]*models.Product, error) {
	return s.all, s.allErr
}
func (s *stubCatalog) ProductsByBrand(_ context.Context, brand string) ([]*models.Product, error) {
	if p, ok := s.brands[brand]; ok {
		return p, nil
	}
	return nil, errors.New("unknown brand")
}
func (s *stubCatalog) ProductsByType(context.Context, string) ([]*models.Product, error) {
	return nil, nil
}
func (s *stubCatalog) SearchProducts(context.Context, string, string) ([]*models.Product, error) {
	return nil, nil
}

func item(id, name, typ, price string, concerns ...string) *models.Product {
	p := models.NewProduct(models.Source{ID: models.FlexID(id), Name: name, Brand: "Acme", Type: typ, Price: models.FlexText(price)})
	if len(concerns) > 0 {
		p.SetConcerns(concerns)
	}
	return p
}

func newTestHandler(cat *stubCatalog, brands ...string) *handler {
	engine := filter.NewEngine(filter.NewEnricher(rand.NewPCG(3, 4), nil), nil)
	svc := catalog.NewService(cat, engine, favorites.NewStore(nil), catalog.Options{FallbackBrands: brands}, nil)
	return newHandler(svc, nil)
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func decodeIDs(t *testing.T, text string) []string {
	t.Helper()
	var rows []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &rows))
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestSearchProductsTool(t *testing.T) {
	h := newTestHandler(&stubCatalog{all: []*models.Product{
		item("1", "Gentle Cleanser", "cleanser", "8", "dryness"),
		item("2", "Rich Night Cream", "moisturizer", "45", "aging"),
		item("3", "Toner", "toner", "15", "acne"),
	}})

	res, err := h.searchProducts(context.Background(), call(map[string]any{
		"min_price": 10.0,
		"max_price": 20,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"3"}, decodeIDs(t, resultText(t, res)))

	res, err = h.searchProducts(context.Background(), call(map[string]any{"concerns": []any{"acne"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, decodeIDs(t, resultText(t, res)))

	res, err = h.searchProducts(context.Background(), call(map[string]any{"query": "CREAM"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, decodeIDs(t, resultText(t, res)))
}

func TestSearchProductsToolError(t *testing.T) {
	h := newTestHandler(&stubCatalog{allErr: errors.New("network error: refused")})

	res, err := h.searchProducts(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "network error")
}

func TestBrowseCatalogFallback(t *testing.T) {
	h := newTestHandler(&stubCatalog{
		allErr: errors.New("offline"),
		brands: map[string][]*models.Product{"clinique": {item("9", "Moisture Surge", "moisturizer", "")}},
	}, "clinique", "revlon")

	res, err := h.browseCatalog(context.Background(), call(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Products     []map[string]any `json:"products"`
		Fallback     bool             `json:"fallback"`
		Notice       string           `json:"notice"`
		FailedBrands []string         `json:"failed_brands"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.True(t, out.Fallback)
	assert.Len(t, out.Products, 1)
	assert.Contains(t, out.Notice, "offline")
	assert.Equal(t, []string{"revlon"}, out.FailedBrands)
}

func TestBrowseCatalogByBrand(t *testing.T) {
	h := newTestHandler(&stubCatalog{brands: map[string][]*models.Product{
		"acme": {item("5", "Daily Serum", "serum", "")},
	}})

	res, err := h.browseCatalog(context.Background(), call(map[string]any{"brand": "acme"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, decodeIDs(t, resultText(t, res)))

	res, err = h.browseCatalog(context.Background(), call(map[string]any{"brand": "nobody"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestFilterByConcernsTool(t *testing.T) {
	h := newTestHandler(&stubCatalog{all: []*models.Product{
		item("1", "Face Wash", "cleanser", "5", "acne", "oiliness"),
		item("2", "Face Oil", "serum", "5", "dryness"),
	}})

	res, err := h.filterByConcerns(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.filterByConcerns(context.Background(), call(map[string]any{"concerns": []any{"acne", "oiliness"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, decodeIDs(t, resultText(t, res)))
}

func TestToggleAndListFavorites(t *testing.T) {
	h := newTestHandler(&stubCatalog{all: []*models.Product{item("7", "Eye Cream", "moisturizer", "20")}})
	ctx := context.Background()

	res, err := h.toggleFavorite(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.toggleFavorite(ctx, call(map[string]any{"id": "7"}))
	require.NoError(t, err)
	assert.Equal(t, "Added to favorites: Eye Cream", resultText(t, res))

	res, err = h.listFavorites(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, decodeIDs(t, resultText(t, res)))

	res, err = h.toggleFavorite(ctx, call(map[string]any{"id": "7", "favorite": false}))
	require.NoError(t, err)
	assert.Equal(t, "Removed from favorites: Eye Cream", resultText(t, res))

	res, err = h.listFavorites(ctx, call(nil))
	require.NoError(t, err)
	assert.Empty(t, decodeIDs(t, resultText(t, res)))

	res, err = h.toggleFavorite(ctx, call(map[string]any{"id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetProductTool(t *testing.T) {
	p := models.NewProduct(models.Source{
		ID: "5", Name: "Vitamin C Serum", Brand: "Acme", Type: "serum", Price: "24",
		Description:   "A brightening serum with a long description that a list view would cut short.",
		ImageURL:      "https://img.example/5.png",
		ProductColors: []models.ProductColor{{HexValue: "#F5D0A9", ColourName: "Clear"}},
	})
	h := newTestHandler(&stubCatalog{all: []*models.Product{p}})
	ctx := context.Background()

	res, err := h.getProduct(ctx, call(map[string]any{"id": " "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.getProduct(ctx, call(map[string]any{"id": "5"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
		Colors      []struct {
			Hex string `json:"hex_value"`
		} `json:"colors"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "5", got.ID)
	assert.Equal(t, p.Description(), got.Description)
	assert.Equal(t, "https://img.example/5.png", got.ImageURL)
	require.Len(t, got.Colors, 1)
	assert.Equal(t, "#F5D0A9", got.Colors[0].Hex)

	res, err = h.getProduct(ctx, call(map[string]any{"id": "404"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown product")
}

func TestHTTPHandlerAuth(t *testing.T) {
	h := newTestHandler(&stubCatalog{})
	srv := httptest.NewServer(NewHTTPHandler(NewServer(h.svc, nil), "secret"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/mcp", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/mcp", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")
}
