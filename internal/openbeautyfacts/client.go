// Package openbeautyfacts searches the Open Beauty Facts product database.
package openbeautyfacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lukman83/skinscout/internal/httputil"
	"github.com/lukman83/skinscout/internal/models"
	"github.com/lukman83/skinscout/internal/platform"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://world.openbeautyfacts.org"
	searchPath     = "/cgi/search.pl"
	defaultRetries = 2
)

// Client implements platform.TermSearcher.
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

func (c *Client) Name() string { return "openbeautyfacts" }

// SearchTerms runs a simple full-text search and returns one page of results.
func (c *Client) SearchTerms(ctx context.Context, terms string, page int) (*platform.SearchPage, error) {
	if page <= 0 {
		page = 1
	}
	params := url.Values{
		"search_terms":  {terms},
		"search_simple": {"1"},
		"json":          {"1"},
		"page":          {strconv.Itoa(page)},
	}
	endpoint := c.baseURL + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httputil.Apply(req, httputil.JSONHeaders())

	c.logger.Debug("searching open beauty facts", zap.String("terms", terms), zap.Int("page", page))
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

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &platform.SearchPage{
		Count:     int(sr.Count),
		Page:      int(sr.Page),
		PageCount: int(sr.PageCount),
		Products:  make([]*models.Product, 0, len(sr.Products)),
	}
	for i, raw := range sr.Products {
		var p obfProduct
		if err := json.Unmarshal(raw, &p); err != nil {
			c.logger.Warn("skipping malformed product",
				zap.String("terms", terms), zap.Int("index", i), zap.Error(err))
			continue
		}
		out.Products = append(out.Products, p.toProduct())
	}
	return out, nil
}

type searchResponse struct {
	Count     flexInt      `json:"count"`
	Page      flexInt      `json:"page"`
	PageCount flexInt      `json:"page_count"`
	Products  []json.RawMessage `json:"products"`
}

// obfProduct fields tolerate numbers where text is expected.
type obfProduct struct {
	Code        models.FlexID   `json:"code"`
	ProductName models.FlexText `json:"product_name"`
	Brands      models.FlexText `json:"brands"`
	Categories  models.FlexText `json:"categories"`
	GenericName models.FlexText `json:"generic_name"`
	ImageURL    models.FlexText `json:"image_url"`
}

func (p obfProduct) toProduct() *models.Product {
	categories := string(p.Categories)
	return models.NewProduct(models.Source{
		ID:          p.Code,
		Name:        string(p.ProductName),
		Brand:       firstItem(string(p.Brands)),
		Type:        categories,
		Description: string(p.GenericName),
		ImageURL:    string(p.ImageURL),
		Category:    lastItem(categories),
	})
}

// firstItem returns the first entry of a comma-separated tag list.
func firstItem(list string) string {
	head, _, _ := strings.Cut(list, ",")
	return strings.TrimSpace(head)
}

func lastItem(list string) string {
	if i := strings.LastIndex(list, ","); i >= 0 {
		return strings.TrimSpace(list[i+1:])
	}
	return strings.TrimSpace(list)
}

// flexInt accepts numbers and numeric strings; the API returns both.
// Anything else decodes as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		data = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	*f = flexInt(n)
	return nil
}
