// Package makeupapi is a client for the public makeup catalog REST API.
package makeupapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lukman83/skinscout/internal/httputil"
	"github.com/lukman83/skinscout/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public catalog host.
	DefaultBaseURL = "https://makeup-api.herokuapp.com"
	productsPath   = "/api/v1/products.json"
	defaultRetries = 2
)

// Client implements platform.Catalog.
type Client struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	logger     *zap.Logger
}

func NewClient(client *http.Client, baseURL string, logger *zap.Logger) *Client {
	if client == nil {
		client = httputil.NewHTTPClient(nil)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: defaultRetries,
		logger:     logger,
	}
}

func (c *Client) Name() string { return "makeup" }

func (c *Client) AllProducts(ctx context.Context) ([]*models.Product, error) {
	return c.fetch(ctx, nil)
}

func (c *Client) ProductsByBrand(ctx context.Context, brand string) ([]*models.Product, error) {
	return c.fetch(ctx, url.Values{"brand": {brand}})
}

func (c *Client) ProductsByType(ctx context.Context, productType string) ([]*models.Product, error) {
	return c.fetch(ctx, url.Values{"product_type": {productType}})
}

// SearchProducts queries by brand and product type; blank values are omitted.
func (c *Client) SearchProducts(ctx context.Context, brand, productType string) ([]*models.Product, error) {
	params := url.Values{}
	if strings.TrimSpace(brand) != "" {
		params.Set("brand", brand)
	}
	if strings.TrimSpace(productType) != "" {
		params.Set("product_type", productType)
	}
	return c.fetch(ctx, params)
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]*models.Product, error) {
	endpoint := c.baseURL + productsPath
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httputil.Apply(req, httputil.JSONHeaders())

	c.logger.Debug("fetching products", zap.String("url", endpoint))
	resp, err := httputil.DoWithRetry(c.client, req, c.maxRetries)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("network error: read body: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]*models.Product, 0, len(records))
	for i, raw := range records {
		if strings.TrimSpace(string(raw)) == "null" {
			products = append(products, nil)
			continue
		}
		var src models.Source
		if err := json.Unmarshal(raw, &src); err != nil {
			c.logger.Warn("skipping malformed product",
				zap.String("url", endpoint), zap.Int("index", i), zap.Error(err))
			continue
		}
		src.Description = PlainText(src.Description)
		products = append(products, models.NewProduct(src))
	}
	c.logger.Debug("products fetched", zap.String("url", endpoint), zap.Int("count", len(products)))
	return products, nil
}
