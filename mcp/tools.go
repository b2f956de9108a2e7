package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lukman83/skinscout/internal/catalog"
	"github.com/lukman83/skinscout/internal/filter"
	"github.com/lukman83/skinscout/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

type handler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

func newHandler(svc *catalog.Service, logger *zap.Logger) *handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &handler{svc: svc, logger: logger}
}

func registerTools(s *server.MCPServer, h *handler) {
	// search_products
	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search skincare products by text, category, price range and skin concerns"),
		mcp.WithString("query",
			mcp.Description("Case-insensitive text matched against name and brand"),
		),
		mcp.WithString("category",
			mcp.Description("Product type substring, e.g. serum or moisturizer"),
		),
		mcp.WithNumber("min_price",
			mcp.Description("Minimum price in USD (inclusive)"),
			mcp.Min(0),
		),
		mcp.WithNumber("max_price",
			mcp.Description("Maximum price in USD (inclusive)"),
			mcp.Min(0),
		),
		mcp.WithArray("concerns",
			mcp.Description("Skin concerns every result must carry: "+strings.Join(filter.ConcernVocabulary, ", ")),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(searchTool, h.searchProducts)

	// browse_catalog
	browseTool := mcp.NewTool("browse_catalog",
		mcp.WithDescription("Load the skincare catalog, optionally for a single brand"),
		mcp.WithString("brand",
			mcp.Description("Brand to browse (default: whole catalog with brand fallback)"),
		),
	)
	s.AddTool(browseTool, h.browseCatalog)

	// filter_by_concerns
	concernsTool := mcp.NewTool("filter_by_concerns",
		mcp.WithDescription("Narrow the most recent results to products tagged with every given skin concern"),
		mcp.WithArray("concerns",
			mcp.Required(),
			mcp.Description("Required skin concerns"),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(concernsTool, h.filterByConcerns)

	// get_product
	productTool := mcp.NewTool("get_product",
		mcp.WithDescription("Get the full details of one product: description, image, rating, colors and concerns"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Product id as returned by search_products or browse_catalog"),
		),
	)
	s.AddTool(productTool, h.getProduct)

	// list_favorites
	favoritesTool := mcp.NewTool("list_favorites",
		mcp.WithDescription("List favorited products"),
	)
	s.AddTool(favoritesTool, h.listFavorites)

	// toggle_favorite
	toggleTool := mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Mark or unmark a product as favorite"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Product id as returned by search_products or browse_catalog"),
		),
		mcp.WithBoolean("favorite",
			mcp.Description("true to favorite, false to unfavorite (default: true)"),
			mcp.DefaultBool(true),
		),
	)
	s.AddTool(toggleTool, h.toggleFavorite)
}

func (h *handler) searchProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := filter.Criteria{
		Query:    request.GetString("query", ""),
		Category: request.GetString("category", ""),
		MinPrice: optionalFloat(request, "min_price"),
		MaxPrice: optionalFloat(request, "max_price"),
		Concerns: request.GetStringSlice("concerns", nil),
	}

	products, err := h.svc.Search(ctx, c)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
	}
	return jsonResult(products)
}

func (h *handler) browseCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if brand := strings.TrimSpace(request.GetString("brand", "")); brand != "" {
		products, err := h.svc.ByBrand(ctx, brand)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("browse error: %v", err)), nil
		}
		return jsonResult(products)
	}

	res, err := h.svc.LoadInitial(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("browse error: %v", err)), nil
	}
	out := browseResult{Products: res.Products, Fallback: res.Fallback}
	if res.PrimaryErr != nil {
		out.Notice = fmt.Sprintf("full catalog unavailable (%v); showing brand results", res.PrimaryErr)
	}
	for brand, err := range res.BrandErrors {
		h.logger.Warn("brand failed during browse", zap.String("brand", brand), zap.Error(err))
		out.FailedBrands = append(out.FailedBrands, brand)
	}
	sort.Strings(out.FailedBrands)
	return jsonResult(out)
}

type browseResult struct {
	Products     []*models.Product `json:"products"`
	Fallback     bool              `json:"fallback"`
	Notice       string            `json:"notice,omitempty"`
	FailedBrands []string          `json:"failed_brands,omitempty"`
}

func (h *handler) filterByConcerns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	concerns, err := request.RequireStringSlice("concerns")
	if err != nil {
		return mcp.NewToolResultError("concerns is required"), nil
	}
	products, err := h.svc.FilterByConcerns(ctx, concerns)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("filter error: %v", err)), nil
	}
	return jsonResult(products)
}

func (h *handler) getProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(request.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	p, err := h.svc.Resolve(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup error: %v", err)), nil
	}
	return jsonResult(p)
}

func (h *handler) listFavorites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.svc.Favorites())
}

func (h *handler) toggleFavorite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(request.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	favorite := request.GetBool("favorite", true)

	p, err := h.svc.ToggleFavorite(ctx, id, favorite)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("toggle error: %v", err)), nil
	}
	verb := "Added to"
	if !favorite {
		verb = "Removed from"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s favorites: %s", verb, p.Name())), nil
}

func optionalFloat(request mcp.CallToolRequest, key string) *float64 {
	if _, ok := request.GetArguments()[key]; !ok {
		return nil
	}
	v, err := request.RequireFloat(key)
	if err != nil {
		return nil
	}
	return &v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
